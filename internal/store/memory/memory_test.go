package memory_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/models"
	"github.com/persistorai/relations/internal/relation"
	"github.com/persistorai/relations/internal/store/memory"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func newStore(t *testing.T, nodes map[string]string) *memory.Store {
	t.Helper()

	s := memory.New(testLogger())
	for id, typ := range nodes {
		if _, err := s.CreateNode(context.Background(), models.CreateNodeRequest{ID: id, Type: typ, Label: id}); err != nil {
			t.Fatalf("CreateNode(%s): %v", id, err)
		}
	}

	return s
}

func descriptor(t *testing.T, relType string, dir models.Direction, opts ...models.DescriptorOption) models.Descriptor {
	t.Helper()

	d, err := models.NewDescriptor(relType, dir, opts...)
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}

	return d
}

func nodeIDs(t *testing.T, c *relation.Collection[models.Node]) []string {
	t.Helper()

	var out []string
	if err := c.EachNode(context.Background(), func(n models.Node) error {
		out = append(out, n.ID)

		return nil
	}); err != nil {
		t.Fatalf("EachNode: %v", err)
	}

	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestStore_ThreeRelated(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]string{"o": "person", "A": "person", "B": "person", "C": "person", "D": "person", "X": "person", "Y": "person"})

	friends := relation.New(s, "o", descriptor(t, "friends", models.Outgoing))
	enemies := relation.New(s, "o", descriptor(t, "enemies", models.Outgoing))

	if _, err := friends.Add(ctx, "A", "B"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := enemies.Add(ctx, "X", "Y"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := friends.Append(ctx, "C"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if n, err := friends.Size(ctx); err != nil || n != 3 {
		t.Fatalf("Size = %d, %v; want 3", n, err)
	}

	if n, ok, err := friends.At(ctx, 1); err != nil || !ok || n.ID != "B" {
		t.Errorf("At(1) = %q, %v, %v; want B", n.ID, ok, err)
	}

	p1, _ := friends.Page(ctx, 1, 2)
	p2, _ := friends.Page(ctx, 2, 2)

	if len(p1.Items) != 2 || p1.Items[0].ID != "A" || p1.Items[1].ID != "B" {
		t.Errorf("Page(1, 2) = %v", p1.Items)
	}

	if len(p2.Items) != 1 || p2.Items[0].ID != "C" {
		t.Errorf("Page(2, 2) = %v", p2.Items)
	}

	if _, err := friends.Append(ctx, "D"); err != nil {
		t.Fatalf("Append(D): %v", err)
	}

	if got := nodeIDs(t, friends); !sameIDs(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("friends = %v, want [A B C D]", got)
	}
}

func TestStore_Empty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]string{"o": "person"})
	c := relation.New(s, "o", descriptor(t, "friends", models.Outgoing))

	if empty, err := c.IsEmpty(ctx); err != nil || !empty {
		t.Errorf("IsEmpty = %v, %v; want true", empty, err)
	}

	if _, ok, err := c.At(ctx, 0); ok || err != nil {
		t.Errorf("At(0) ok = %v, err = %v", ok, err)
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]string{"o": "person", "a": "person", "b": "person", "late": "person"})
	c := relation.New(s, "o", descriptor(t, "knows", models.Outgoing))

	if _, err := c.Add(ctx, "a", "b"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var seen []string

	err := c.EachNode(ctx, func(n models.Node) error {
		seen = append(seen, n.ID)

		if n.ID == "a" {
			if _, err := c.Append(ctx, "late"); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		t.Fatalf("EachNode: %v", err)
	}

	if !sameIDs(seen, []string{"a", "b"}) {
		t.Errorf("in-flight walk saw %v, want [a b]", seen)
	}

	if got := nodeIDs(t, c); !sameIDs(got, []string{"a", "b", "late"}) {
		t.Errorf("next walk saw %v, want [a b late]", got)
	}
}

func TestStore_Directions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]string{"o": "person", "p": "person", "q": "robot", "r": "person"})

	if _, err := s.CreateRelationship(ctx, "o", "p", "follows", models.Outgoing); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateRelationship(ctx, "o", "q", "follows", models.Incoming); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateRelationship(ctx, "o", "o", "follows", models.Outgoing); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateRelationship(ctx, "o", "r", "follows", models.Both); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		desc models.Descriptor
		want []string
	}{
		{"outgoing", descriptor(t, "follows", models.Outgoing), []string{"p", "o", "r"}},
		{"incoming", descriptor(t, "follows", models.Incoming), []string{"q", "o"}},
		{"both", descriptor(t, "follows", models.Both), []string{"p", "q", "o", "r"}},
		{"both robots", descriptor(t, "follows", models.Both, models.WithNodeType("robot")), []string{"q"}},
		{"other type", descriptor(t, "likes", models.Both), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeIDs(t, relation.New(s, "o", tt.desc)); !sameIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]string{"o": "person", "p": "person"})

	if _, err := s.CreateNode(ctx, models.CreateNodeRequest{ID: "o", Type: "person", Label: "dup"}); !errors.Is(err, models.ErrDuplicateKey) {
		t.Errorf("duplicate node err = %v", err)
	}

	if _, err := s.GetNode(ctx, "missing"); !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("GetNode err = %v", err)
	}

	if _, err := s.CreateRelationship(ctx, "o", "missing", "knows", models.Outgoing); !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("missing target err = %v", err)
	}

	if _, err := s.CreateRelationship(ctx, "o", "p", "knows", models.Outgoing); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateRelationship(ctx, "o", "p", "knows", models.Outgoing); !errors.Is(err, models.ErrDuplicateKey) {
		t.Errorf("duplicate relationship err = %v", err)
	}

	_, err := s.Traverse(ctx, "missing", descriptor(t, "knows", models.Outgoing))
	if !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("Traverse missing origin err = %v", err)
	}
}

func TestStore_CursorCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, map[string]string{"o": "person", "p": "person"})

	if _, err := s.CreateRelationship(ctx, "o", "p", "knows", models.Outgoing); err != nil {
		t.Fatal(err)
	}

	cur, err := s.Traverse(ctx, "o", descriptor(t, "knows", models.Outgoing))
	if err != nil {
		t.Fatal(err)
	}

	cur.Close()
	cur.Close()

	if _, err := cur.Next(ctx); !errors.Is(err, models.ErrCursorDone) {
		t.Errorf("Next after Close err = %v, want ErrCursorDone", err)
	}
}

func TestStore_NodePropertiesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := memory.New(testLogger())

	n, err := s.CreateNode(ctx, models.CreateNodeRequest{ID: "a", Type: "t", Label: "a", Properties: map[string]any{"k": "v"}})
	if err != nil {
		t.Fatal(err)
	}

	n.Properties["k"] = "changed"

	got, _ := s.GetNode(ctx, "a")
	if got.Properties["k"] != "v" {
		t.Errorf("stored property = %v, want v", got.Properties["k"])
	}
}
