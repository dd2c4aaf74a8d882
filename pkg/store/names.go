package store

import "fmt"

// latestValueColumnFamily and segmentColumnFamilyPrefix derive the two
// logical namespaces a store exposes: <name>.latestValues for the
// latest-value tier, and <name>.segments.<id> per segment.
func latestValueColumnFamily(name string) string {
	return fmt.Sprintf("%s.latestValues", name)
}

func segmentColumnFamilyPrefix(name string) string {
	return fmt.Sprintf("%s.segments", name)
}
