// Package retriever implements the work-partitioning and parallel
// retrieval scheduler: the retrieval order is split round-robin into
// one bucket per worker, each worker drains its bucket sequentially,
// and the scheduler joins them all before reporting.
package retriever

import "github.com/bagtools/bagfetch/internal/fetchorder"

// Partition splits items into n buckets, assigning item i to bucket
// i mod n. The split is deterministic and order preserving: bucket
// sizes differ by at most one, every item lands in exactly one bucket,
// and interleaving the buckets round-robin reconstructs the input
// order. Buckets may be empty when there are fewer items than workers.
// n must be at least 1; that is validated at configuration time.
func Partition(items []fetchorder.Item, n int) [][]fetchorder.Item {
	buckets := make([][]fetchorder.Item, n)

	for i, item := range items {
		b := i % n
		buckets[b] = append(buckets[b], item)
	}

	return buckets
}
