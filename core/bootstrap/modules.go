package bootstrap

import "context"

// Storage is whatever backend a seeder writes into; the caller passes the
// concrete store and the seeder asserts it back.
type Storage interface{}

// Seeder installs reference data (section singletons, defaults) that the
// shop expects to exist before serving updates.
type Seeder interface {
	Seed(ctx context.Context, storage Storage) error
}

// SeederFunc adapts a function to Seeder.
type SeederFunc func(ctx context.Context, storage Storage) error

func (f SeederFunc) Seed(ctx context.Context, storage Storage) error {
	return f(ctx, storage)
}

// Modules collects the optional startup hooks the app wires in.
type Modules struct {
	Seeders []Seeder
}

// RunSeeders runs each seeder in order and stops at the first failure; a
// shop with missing section rows should not come up.
func RunSeeders(ctx context.Context, storage Storage, modules Modules) error {
	for _, s := range modules.Seeders {
		if s == nil {
			continue
		}
		if err := s.Seed(ctx, storage); err != nil {
			return err
		}
	}
	return nil
}
