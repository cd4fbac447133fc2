package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the total capacity shared by all shards.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithShards sets the number of ordered shards. Events of one match always
// land on the same shard.
func WithShards(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.shardCount = n
		}
	}
}
