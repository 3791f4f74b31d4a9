// Package multimap provides a concurrency-safe map from a key to a list of values.
//
// Locking is two-level: a structural lock guards the set of keys and is held
// only long enough to fetch or create a key's bucket, and each bucket carries
// its own lock guarding the value list. Operations on different keys never
// contend beyond the brief structural lookup, and no operation holds a bucket
// lock while reacquiring the structural lock.
//
// # Usage
//
//	m := multimap.New[string, *Subscriber]()
//
//	// Insert unless an equal value already exists under the key
//	added := m.AppendIfAbsent("news", sub, func(existing, v *Subscriber) bool {
//		return existing.ID == v.ID
//	})
//
//	// Evict stale values and insert in one pass; Block cancels the insert
//	evicted, added := m.AppendOrEvict("news", sub, func(existing *Subscriber) multimap.Verdict {
//		switch {
//		case existing.ID != sub.ID:
//			return multimap.Keep
//		case existing.Closed():
//			return multimap.Evict
//		default:
//			return multimap.Block
//		}
//	})
//
//	// Visit every value under a key
//	m.ForEach("news", func(s *Subscriber) {
//		s.Notify()
//	})
//
//	// Drop values matching a predicate
//	removed := m.RemoveIf("news", func(s *Subscriber) bool {
//		return s.Closed()
//	})
//
//	// Snapshot of all keys
//	for _, k := range m.Keys() {
//		fmt.Println(k, m.Len(k))
//	}
//
// Keys are created implicitly by AppendOrEvict and AppendIfAbsent and are never deleted: a key
// whose list became empty stays visible in Keys.
//
// Callbacks passed to AppendOrEvict, ForEach and RemoveIf run under the bucket lock. They must
// not call back into the same key of the same map.
package multimap
