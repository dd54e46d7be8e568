package catalog

import (
	"errors"
	"sync"
	"testing"

	"github.com/calderdb/calder/sql"
)

func usersSchema() sql.Schema {
	return sql.Schema{
		{Name: "id", Type: sql.TypeInt},
		{Name: "name", Type: sql.TypeString},
	}
}

func TestDatabaseLifecycle(t *testing.T) {
	c := NewCatalog()

	if err := c.CreateDatabase("app"); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateDatabase("app"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate create = %v, want ErrAlreadyExists", err)
	}
	if got := c.ListDatabases(); len(got) != 1 || got[0] != "app" {
		t.Errorf("ListDatabases = %v", got)
	}
	if err := c.DropDatabase("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("drop missing = %v, want ErrNotFound", err)
	}
	if err := c.DropDatabase("app"); err != nil {
		t.Fatal(err)
	}
	if got := c.ListDatabases(); len(got) != 0 {
		t.Errorf("ListDatabases after drop = %v", got)
	}
}

func TestTableLifecycle(t *testing.T) {
	c := NewCatalog()
	if err := c.CreateDatabase("app"); err != nil {
		t.Fatal(err)
	}

	if err := c.CreateTable("app", "users", usersSchema()); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateTable("app", "users", usersSchema()); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate table = %v, want ErrAlreadyExists", err)
	}
	if err := c.CreateTable("nope", "users", usersSchema()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing db = %v, want ErrNotFound", err)
	}

	tbl, err := c.GetTable("app", "users")
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Columns.Equal(usersSchema()) {
		t.Errorf("columns = %s", tbl.Columns)
	}

	// Mutating the snapshot must not leak into the catalog
	tbl.Columns[0].Name = "mutated"
	fresh, _ := c.GetTable("app", "users")
	if fresh.Columns[0].Name != "id" {
		t.Error("GetTable snapshot shares storage with the catalog")
	}

	altered := sql.Schema{{Name: "id", Type: sql.TypeInt}}
	if err := c.AlterTable("app", "users", altered); err != nil {
		t.Fatal(err)
	}
	tbl, _ = c.GetTable("app", "users")
	if !tbl.Columns.Equal(altered) {
		t.Errorf("after alter, columns = %s", tbl.Columns)
	}

	if err := c.DropTable("app", "users"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetTable("app", "users"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get dropped = %v, want ErrNotFound", err)
	}
}

func TestPartitions(t *testing.T) {
	c := NewCatalog()
	if err := c.CreateDatabase("app"); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateTable("app", "events", usersSchema()); err != nil {
		t.Fatal(err)
	}

	spec := PartitionSpec{"dt": "2026-08-26", "region": "eu"}
	if err := c.AddPartition("app", "events", spec); err != nil {
		t.Fatal(err)
	}
	if err := c.AddPartition("app", "events", spec); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate partition = %v, want ErrAlreadyExists", err)
	}
	if err := c.AddPartition("app", "events", PartitionSpec{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("empty spec = %v, want ErrUnsupported", err)
	}

	parts, err := c.ListPartitions("app", "events")
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 || parts[0].Key() != "dt=2026-08-26,region=eu" {
		t.Errorf("partitions = %v", parts)
	}

	if err := c.DropPartition("app", "events", spec); err != nil {
		t.Fatal(err)
	}
	if err := c.DropPartition("app", "events", spec); !errors.Is(err, ErrNotFound) {
		t.Errorf("drop twice = %v, want ErrNotFound", err)
	}
}

func TestFunctions(t *testing.T) {
	c := NewCatalog()

	fn := Function{Name: "upper", ReturnType: sql.TypeString}
	if err := c.RegisterFunction(fn); err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterFunction(fn); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate function = %v, want ErrAlreadyExists", err)
	}
	got, err := c.LookupFunction("upper")
	if err != nil || got != fn {
		t.Errorf("LookupFunction = %v, %v", got, err)
	}
	if _, err := c.LookupFunction("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("lookup missing = %v, want ErrNotFound", err)
	}
	if names := c.ListFunctions(); len(names) != 1 || names[0] != "upper" {
		t.Errorf("ListFunctions = %v", names)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewCatalog()
	if err := c.CreateDatabase("app"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			_ = c.CreateTable("app", name, usersSchema())
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.ListTables("app")
			_ = c.ListDatabases()
		}()
	}
	wg.Wait()

	tables, err := c.ListTables("app")
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 8 {
		t.Errorf("expected 8 tables, got %d", len(tables))
	}
}
