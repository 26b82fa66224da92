package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithFreePlanLimit sets the daily limit returned for users without a plan.
func WithFreePlanLimit(limit int) Option {
	return func(s *MemoryStore) {
		if limit >= 0 {
			s.freePlan = FreePlan(limit)
		}
	}
}
