// Package catalog is the in-process metadata registry consumed by the
// resolution stage: databases, tables, partitions, and registered functions.
// All mutating operations hold the write lock for their full duration; the
// rewrite engine itself never touches the catalog.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/calderdb/calder/sql"
)

// Definite failure values per operation contract
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnsupported   = errors.New("unsupported operation")
)

// Table is a table's metadata snapshot
type Table struct {
	Name       string
	Columns    sql.Schema
	Partitions []PartitionSpec
}

// PartitionSpec identifies one partition by its key/value spec
type PartitionSpec map[string]string

// Key renders the spec canonically (sorted k=v, comma joined)
func (p PartitionSpec) Key() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, ",")
}

// Function is a registered scalar or aggregate function signature
type Function struct {
	Name       string
	Aggregate  bool
	ReturnType sql.DataType
}

type table struct {
	name       string
	columns    sql.Schema
	partitions map[string]PartitionSpec
}

type database struct {
	name   string
	tables map[string]*table
}

// Catalog is a mutex-guarded metadata store
type Catalog struct {
	mu        sync.RWMutex
	databases map[string]*database
	functions map[string]Function
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		databases: make(map[string]*database),
		functions: make(map[string]Function),
	}
}

// CreateDatabase registers a database name
func (c *Catalog) CreateDatabase(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.databases[name]; ok {
		return fmt.Errorf("database %q: %w", name, ErrAlreadyExists)
	}
	c.databases[name] = &database{name: name, tables: make(map[string]*table)}
	return nil
}

// DropDatabase removes a database and all of its tables
func (c *Catalog) DropDatabase(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.databases[name]; !ok {
		return fmt.Errorf("database %q: %w", name, ErrNotFound)
	}
	delete(c.databases, name)
	return nil
}

// ListDatabases returns all database names, sorted
func (c *Catalog) ListDatabases() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.databases))
	for name := range c.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateTable registers a table with its column schema
func (c *Catalog) CreateTable(db, name string, columns sql.Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.databases[db]
	if !ok {
		return fmt.Errorf("database %q: %w", db, ErrNotFound)
	}
	if _, ok := d.tables[name]; ok {
		return fmt.Errorf("table %s.%s: %w", db, name, ErrAlreadyExists)
	}
	d.tables[name] = &table{
		name:       name,
		columns:    append(sql.Schema(nil), columns...),
		partitions: make(map[string]PartitionSpec),
	}
	return nil
}

// DropTable removes a table
func (c *Catalog) DropTable(db, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.databases[db]
	if !ok {
		return fmt.Errorf("database %q: %w", db, ErrNotFound)
	}
	if _, ok := d.tables[name]; !ok {
		return fmt.Errorf("table %s.%s: %w", db, name, ErrNotFound)
	}
	delete(d.tables, name)
	return nil
}

// AlterTable replaces a table's column schema
func (c *Catalog) AlterTable(db, name string, columns sql.Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookupTable(db, name)
	if err != nil {
		return err
	}
	t.columns = append(sql.Schema(nil), columns...)
	return nil
}

// GetTable returns a snapshot of a table's metadata
func (c *Catalog) GetTable(db, name string) (Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, err := c.lookupTable(db, name)
	if err != nil {
		return Table{}, err
	}
	return t.snapshot(), nil
}

// ListTables returns all table names in a database, sorted
func (c *Catalog) ListTables(db string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.databases[db]
	if !ok {
		return nil, fmt.Errorf("database %q: %w", db, ErrNotFound)
	}
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AddPartition registers a partition on a table
func (c *Catalog) AddPartition(db, name string, spec PartitionSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookupTable(db, name)
	if err != nil {
		return err
	}
	key := spec.Key()
	if key == "" {
		return fmt.Errorf("empty partition spec for %s.%s: %w", db, name, ErrUnsupported)
	}
	if _, ok := t.partitions[key]; ok {
		return fmt.Errorf("partition %q of %s.%s: %w", key, db, name, ErrAlreadyExists)
	}
	t.partitions[key] = spec
	return nil
}

// DropPartition removes a partition
func (c *Catalog) DropPartition(db, name string, spec PartitionSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookupTable(db, name)
	if err != nil {
		return err
	}
	key := spec.Key()
	if _, ok := t.partitions[key]; !ok {
		return fmt.Errorf("partition %q of %s.%s: %w", key, db, name, ErrNotFound)
	}
	delete(t.partitions, key)
	return nil
}

// ListPartitions returns a table's partitions sorted by canonical key
func (c *Catalog) ListPartitions(db, name string) ([]PartitionSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, err := c.lookupTable(db, name)
	if err != nil {
		return nil, err
	}
	return t.snapshot().Partitions, nil
}

// RegisterFunction registers a function signature
func (c *Catalog) RegisterFunction(fn Function) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.functions[fn.Name]; ok {
		return fmt.Errorf("function %q: %w", fn.Name, ErrAlreadyExists)
	}
	c.functions[fn.Name] = fn
	return nil
}

// LookupFunction finds a registered function by name
func (c *Catalog) LookupFunction(name string) (Function, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.functions[name]
	if !ok {
		return Function{}, fmt.Errorf("function %q: %w", name, ErrNotFound)
	}
	return fn, nil
}

// ListFunctions returns all registered function names, sorted
func (c *Catalog) ListFunctions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupTable requires the caller to hold at least the read lock
func (c *Catalog) lookupTable(db, name string) (*table, error) {
	d, ok := c.databases[db]
	if !ok {
		return nil, fmt.Errorf("database %q: %w", db, ErrNotFound)
	}
	t, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s.%s: %w", db, name, ErrNotFound)
	}
	return t, nil
}

func (t *table) snapshot() Table {
	parts := make([]PartitionSpec, 0, len(t.partitions))
	keys := make([]string, 0, len(t.partitions))
	for key := range t.partitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		spec := make(PartitionSpec, len(t.partitions[key]))
		for k, v := range t.partitions[key] {
			spec[k] = v
		}
		parts = append(parts, spec)
	}
	return Table{
		Name:       t.name,
		Columns:    append(sql.Schema(nil), t.columns...),
		Partitions: parts,
	}
}
