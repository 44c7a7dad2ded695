package tree

import (
	"fmt"
	"sort"
	"strings"

	metadata "github.com/aarsakian/FATForensics/FS"
	"github.com/aarsakian/FATForensics/logger"
)

// Node is one path component. Directories carry children keyed by name,
// deleted entries keep their status tag so the listing shows what was
// recovered against what is live.
type Node struct {
	name     string
	record   metadata.Record
	children map[string]*Node
}

type Tree struct {
	root *Node
}

// Build indexes every record under its full path. Records share path
// components, one node per component, the record pointer lands on the leaf.
func (t *Tree) Build(records []metadata.Record) {
	msg := fmt.Sprintf("Building tree from %d records ", len(records))
	fmt.Printf(msg + "\n")
	logger.FSLogger.Info(msg)

	t.root = &Node{name: "", children: map[string]*Node{}}

	for _, record := range records {
		t.AddRecord(record)
	}

}

func (t *Tree) AddRecord(record metadata.Record) {
	components := strings.Split(strings.Trim(record.GetFullPath(), "/"), "/")

	node := t.root
	for _, component := range components {
		if component == "" {
			continue
		}
		child, found := node.children[component]
		if !found {
			child = &Node{name: component, children: map[string]*Node{}}
			node.children[component] = child
		}
		node = child
	}
	node.record = record
}

func (t Tree) Show() {
	if t.root == nil {
		return
	}
	t.root.show(0)
}

func (node Node) show(depth int) {
	if depth > 0 {
		tag := ""
		if node.record != nil && node.record.IsDeleted() {
			tag = fmt.Sprintf(" (%s)", node.record.GetStatus())
		}
		fmt.Printf("%s|_> %s%s\n", strings.Repeat("  ", depth-1), node.name, tag)
	}

	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node.children[name].show(depth + 1)
	}
}
