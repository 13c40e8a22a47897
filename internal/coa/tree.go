package coa

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mizan-erp/mizan/internal/org"
)

// Node is one renderable tree row.
type Node struct {
	Account
	Children []*Node `json:"children,omitempty"`
	// HasChildren is computed from the unfiltered account set, so a
	// collapsed group keeps its expand affordance even when the active
	// filter hides every child.
	HasChildren bool `json:"hasChildren"`
	Expanded    bool `json:"expanded"`
}

// Tree is the assembled hierarchy plus any structural warnings raised
// while building it (cyclic or dangling parent references).
type Tree struct {
	Roots    []*Node  `json:"roots"`
	Warnings []string `json:"warnings,omitempty"`
}

// Filter narrows the visible account set. Zero values mean "no
// restriction" for that dimension; Scope nil skips entity scoping.
type Filter struct {
	Scope  *org.Scope
	Search string
	Type   AccountType
}

// Match applies entity visibility, case-insensitive name-or-code search,
// and the type filter.
func (f Filter) Match(a Account) bool {
	if f.Scope != nil && !f.Scope.CanSeeAccount(a.EntityID) {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.ID), needle) {
			return false
		}
	}
	return true
}

// BuildTree assembles the visible hierarchy from a flat account list.
// Roots are accounts with no parent, plus visible accounts whose parent
// fell outside the filter, plus nodes cut loose by cycle detection.
// Sibling order is structural code order, overridden by drag ranks.
// Never panics on malformed parent data.
func BuildTree(accounts []Account, f Filter, exp *ExpandState, ord *OrderState) Tree {
	full := make(map[string]Account, len(accounts))
	hasChild := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		full[key(a.EntityID, a.ID)] = a
	}
	for _, a := range accounts {
		if a.ParentID != nil {
			hasChild[key(a.EntityID, *a.ParentID)] = true
		}
	}

	tree := Tree{}
	cyclic := detectCycles(accounts, full)
	for k := range cyclic {
		tree.Warnings = append(tree.Warnings, fmt.Sprintf("account %s is part of a parent cycle, shown as a root", k))
	}
	sort.Strings(tree.Warnings)

	visible := make(map[string]*Node, len(accounts))
	for _, a := range accounts {
		if !f.Match(a) {
			continue
		}
		visible[key(a.EntityID, a.ID)] = &Node{
			Account:     a,
			HasChildren: hasChild[key(a.EntityID, a.ID)],
			Expanded:    exp.IsExpanded(a.ID),
		}
	}

	for k, node := range visible {
		if node.ParentID == nil || cyclic[k] {
			tree.Roots = append(tree.Roots, node)
			continue
		}
		parent, ok := visible[key(node.EntityID, *node.ParentID)]
		if !ok || cycleWouldForm(node, parent) {
			tree.Roots = append(tree.Roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(tree.Roots, ord)
	for _, node := range visible {
		sortNodes(node.Children, ord)
	}
	return tree
}

func key(entityID, accountID string) string {
	return entityID + "/" + accountID
}

// detectCycles walks every parent chain with a visited set and returns
// the keys of accounts that sit on a parent cycle. Each such account is
// rendered as a root instead of recursed into; an account whose chain
// merely leads into someone else's cycle keeps its place.
func detectCycles(accounts []Account, full map[string]Account) map[string]bool {
	cyclic := make(map[string]bool)
	for _, a := range accounts {
		self := key(a.EntityID, a.ID)
		visited := map[string]bool{self: true}
		cur := a
		for cur.ParentID != nil {
			pk := key(cur.EntityID, *cur.ParentID)
			if pk == self {
				cyclic[self] = true
				break
			}
			if visited[pk] {
				break
			}
			visited[pk] = true
			parent, ok := full[pk]
			if !ok {
				break
			}
			cur = parent
		}
	}
	return cyclic
}

// cycleWouldForm guards the assembly step against a node being attached
// under itself when cycle detection flagged only one end of the loop.
func cycleWouldForm(child, parent *Node) bool {
	return child.EntityID == parent.EntityID && child.ID == parent.ID
}

func sortNodes(nodes []*Node, ord *OrderState) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if ord != nil {
			ri, iok := ord.Rank(nodes[i].ID)
			rj, jok := ord.Rank(nodes[j].ID)
			if iok && jok {
				return ri < rj
			}
		}
		return CompareCodes(nodes[i].ID, nodes[j].ID) < 0
	})
}

// Flatten returns the visible rows in presentation order, descending only
// into expanded nodes.
func (t Tree) Flatten() []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			if n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(t.Roots)
	return out
}

// ExpandState tracks per-node expansion. Sticky across filter changes,
// default collapsed.
type ExpandState struct {
	mu          sync.Mutex
	expanded    map[string]bool
	expandedAll bool
}

// NewExpandState starts fully collapsed.
func NewExpandState() *ExpandState {
	return &ExpandState{expanded: make(map[string]bool)}
}

// IsExpanded reports the sticky state for a node.
func (s *ExpandState) IsExpanded(id string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.expanded[id]; ok {
		return v
	}
	return s.expandedAll
}

// Toggle flips one node.
func (s *ExpandState) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expanded[id]
	if !ok {
		cur = s.expandedAll
	}
	s.expanded[id] = !cur
	return !cur
}

// SetAll flips every node to the same state, discarding per-node
// overrides.
func (s *ExpandState) SetAll(expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expandedAll = expanded
	s.expanded = make(map[string]bool)
}

// OrderState records cosmetic drag-reorder ranks. Moving a row never
// touches parentId or the account code; ranks only override sibling
// ordering at render time.
type OrderState struct {
	mu   sync.Mutex
	rank map[string]int
}

// NewOrderState starts with no overrides (pure code order).
func NewOrderState() *OrderState {
	return &OrderState{rank: make(map[string]int)}
}

// Rank returns the override rank for an id.
func (s *OrderState) Rank(id string) (int, bool) {
	if s == nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rank[id]
	return r, ok
}

// Move relocates draggedID to targetID's position within the given
// presentation order and re-seeds ranks for every row in between.
func (s *OrderState) Move(presentation []string, draggedID, targetID string) {
	if draggedID == targetID {
		return
	}
	from, to := -1, -1
	for i, id := range presentation {
		if id == draggedID {
			from = i
		}
		if id == targetID {
			to = i
		}
	}
	if from == -1 || to == -1 {
		return
	}
	without := make([]string, 0, len(presentation)-1)
	without = append(without, presentation[:from]...)
	without = append(without, presentation[from+1:]...)
	if to > from {
		to--
	}
	order := make([]string, 0, len(presentation))
	order = append(order, without[:to]...)
	order = append(order, draggedID)
	order = append(order, without[to:]...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range order {
		s.rank[id] = i
	}
}
