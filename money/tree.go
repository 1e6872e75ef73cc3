package money

import "sort"

// Node is a nested price structure: a Leaf holding a price, a List or a Map of
// nodes. Leaves point into the structure that owns the prices, so rewriting a
// leaf rewrites the owner in place.
type Node interface {
	node()
}

// Leaf is a single price.
type Leaf struct {
	Price *Price
}

// List is an ordered sequence of nodes.
type List []Node

// Map is a keyed collection of nodes.
type Map map[string]Node

func (Leaf) node() {}
func (List) node() {}
func (Map) node()  {}

// Walk calls fn for every price in the tree, depth first. Map entries are
// visited in key order. Walking stops at the first error.
func Walk(n Node, fn func(*Price) error) error {
	switch n := n.(type) {
	case Leaf:
		if n.Price == nil {
			return nil
		}
		return fn(n.Price)
	case List:
		for _, c := range n {
			if err := Walk(c, fn); err != nil {
				return err
			}
		}
	case Map:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := Walk(n[k], fn); err != nil {
				return err
			}
		}
	}
	return nil
}
