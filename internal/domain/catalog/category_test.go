package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTreePaths(t *testing.T) {
	rootID := uuid.New()
	childID := uuid.New()
	grandchildID := uuid.New()

	root := &Category{ID: rootID, TreePath: RootPath(rootID)}
	if root.TreePath != "/"+rootID.String()+"/" {
		t.Fatalf("unexpected root path %q", root.TreePath)
	}

	child := &Category{ID: childID, TreePath: root.ChildPath(childID), Depth: 1}
	want := "/" + rootID.String() + "/" + childID.String() + "/"
	if child.TreePath != want {
		t.Fatalf("child path = %q, want %q", child.TreePath, want)
	}

	grand := child.ChildPath(grandchildID)
	if grand != want+grandchildID.String()+"/" {
		t.Fatalf("grandchild path = %q", grand)
	}
}

func TestVersionCovers(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	open := &CategoryVersion{ValidFrom: from}
	if open.Covers(from.Add(-time.Second)) {
		t.Error("open version must not cover instants before ValidFrom")
	}
	if !open.Covers(from) {
		t.Error("window start is inclusive")
	}
	if !open.Covers(from.Add(1000 * time.Hour)) {
		t.Error("open version covers everything after ValidFrom")
	}

	closed := &CategoryVersion{ValidFrom: from, ValidTo: &to}
	if !closed.Covers(to.Add(-time.Second)) {
		t.Error("closed version covers instants inside the window")
	}
	if closed.Covers(to) {
		t.Error("window end is exclusive")
	}
	if closed.IsOpen() {
		t.Error("version with ValidTo set must not report open")
	}
	if !open.IsOpen() {
		t.Error("version without ValidTo must report open")
	}
}

func TestAttributeEntry(t *testing.T) {
	defA := uuid.New()
	defB := uuid.New()
	v := &CategoryVersion{
		Attributes: []CategoryVersionAttribute{
			{AttributeDefinitionID: defA, DisplayOrder: 0},
			{AttributeDefinitionID: defB, DisplayOrder: 1, Required: true},
		},
	}
	entry := v.AttributeEntry(defB)
	if entry == nil || !entry.Required {
		t.Fatalf("expected required entry for defB, got %+v", entry)
	}
	if v.AttributeEntry(uuid.New()) != nil {
		t.Error("unknown definition id must return nil")
	}
}
