package pyast

import "fmt"

// CheckConsistency asserts the §8 quantified invariants over one File's
// parse tree: every child's range lies inside its parent's range, sibling
// ranges are non-overlapping and strictly increasing, and every child's
// recorded Parent id matches its actual parent. It is used by tests, not
// by the production parsing path (§4.2 "a separate consistency walker
// (used in tests)").
func CheckConsistency(f *File) []error {
	var errs []error
	if f.Root == InvalidNodeID {
		return errs
	}
	f.Walk(f.Root, func(id NodeID, n *Node) bool {
		prevEnd := -1
		for _, childID := range n.Children {
			child := f.Get(childID)
			if child == nil {
				errs = append(errs, fmt.Errorf("node %d: nil child %d", id, childID))
				continue
			}
			if child.Parent != id {
				errs = append(errs, fmt.Errorf("node %d: child %d has parent %d", id, childID, child.Parent))
			}
			if child.Start < n.Start || child.End > n.End {
				errs = append(errs, fmt.Errorf("node %d [%d,%d]: child %d [%d,%d] escapes parent range",
					id, n.Start, n.End, childID, child.Start, child.End))
			}
			if child.Start < prevEnd {
				errs = append(errs, fmt.Errorf("node %d: child %d starts at %d before previous sibling ended at %d",
					id, childID, child.Start, prevEnd))
			}
			prevEnd = child.End
		}
		return true
	})
	return errs
}
