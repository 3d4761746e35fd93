package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func sampleData() map[string]map[string]int64 {
	return map[string]map[string]int64{
		"Напитки": {"Чай": 50, "Кофе": 120},
		"Выпечка": {"Круассан": 150},
		"Салаты":  {},
	}
}

func TestCatalog_Categories(t *testing.T) {
	c := New(sampleData())

	want := []string{"Выпечка", "Напитки", "Салаты"}
	if got := c.Categories(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected sorted categories %v, got %v", want, got)
	}
}

func TestCatalog_EmptyCategoryKept(t *testing.T) {
	c := New(sampleData())

	if !c.HasCategory("Салаты") {
		t.Fatal("empty category must still exist")
	}
	if items := c.Items("Салаты"); len(items) != 0 {
		t.Fatalf("expected no items, got %v", items)
	}
}

func TestCatalog_Items(t *testing.T) {
	c := New(sampleData())

	items := c.Items("Напитки")
	want := []Item{{Name: "Кофе", Price: 120}, {Name: "Чай", Price: 50}}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("expected sorted items %v, got %v", want, items)
	}

	if items := c.Items("Электроника"); items != nil {
		t.Fatalf("unknown category must return nil, got %v", items)
	}
}

func TestCatalog_Price(t *testing.T) {
	c := New(sampleData())

	price, ok := c.Price("Напитки", "Чай")
	if !ok || price != 50 {
		t.Fatalf("expected (50, true), got (%d, %v)", price, ok)
	}

	if _, ok := c.Price("Напитки", "Круассан"); ok {
		t.Fatal("item from another category must not resolve")
	}
	if _, ok := c.Price("Электроника", "Чай"); ok {
		t.Fatal("unknown category must not resolve")
	}
}

func TestCatalog_SnapshotIsolation(t *testing.T) {
	data := sampleData()
	c := New(data)

	data["Напитки"]["Чай"] = 999
	delete(data, "Выпечка")

	if price, _ := c.Price("Напитки", "Чай"); price != 50 {
		t.Fatalf("snapshot must not see later mutations, got %d", price)
	}
	if !c.HasCategory("Выпечка") {
		t.Fatal("snapshot must not see deletions")
	}
}

type staticSource struct {
	data map[string]map[string]int64
	err  error
}

func (s staticSource) Fetch(ctx context.Context) (map[string]map[string]int64, error) {
	return s.data, s.err
}

func TestLoad(t *testing.T) {
	c, err := Load(context.Background(), staticSource{data: sampleData()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Categories()) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(c.Categories()))
	}

	fetchErr := errors.New("db unavailable")
	if _, err := Load(context.Background(), staticSource{err: fetchErr}); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
