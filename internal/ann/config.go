package ann

// Config controls forest construction.
type Config struct {
	Trees      int   // number of random-projection trees (default: 10)
	LeafSize   int   // max items per leaf (default: 32)
	Seed       int64 // base seed; tree i uses Seed+i
	Dimensions int   // expected dimensionality; 0 auto-detects from the first valid item
}

// DefaultConfig returns the forest settings used by the search service.
func DefaultConfig() Config {
	return Config{Trees: 10, LeafSize: 32, Seed: 42}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.LeafSize <= 0 {
		c.LeafSize = d.LeafSize
	}
	return c
}
