package database

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_seed_menu.up.sql": {Data: []byte("INSERT ...")},
		"migrations/0001_init.up.sql":      {Data: []byte("CREATE ...")},
		"migrations/0001_init.down.sql":    {Data: []byte("DROP ...")},
		"migrations/README.md":             {Data: []byte("docs")},
	}

	names, err := ListMigrations(fsys, "migrations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"0001_init.up.sql", "0002_seed_menu.up.sql"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}
