package simulator

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithMatchCount sets how many matches the run submits.
func WithMatchCount(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.matchCount = n
		}
	}
}

// WithPlayerCount sets the size of the synthetic player pool.
func WithPlayerCount(n int) Option {
	return func(s *Simulator) {
		if n >= minFFASize {
			s.playerCount = n
		}
	}
}

// WithWorkers sets how many submissions run in parallel.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithArenas makes the run spread matches across the given arena ids.
func WithArenas(arenas []string) Option {
	return func(s *Simulator) {
		s.arenas = arenas
	}
}
