package queue

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestJoinOrderingDefault(t *testing.T) {
	m := NewManager()
	for _, login := range []string{"alice", "bob", "carol"} {
		if err := m.Join(login, RoleDefault); err != nil {
			t.Fatalf("Join(%q) error: %v", login, err)
		}
	}
	got := m.Snapshot()
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Snapshot()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestJoinDuplicate(t *testing.T) {
	m := NewManager()
	if err := m.Join("alice", RoleDefault); err != nil {
		t.Fatalf("first Join error: %v", err)
	}
	if err := m.Join("alice", RoleDefault); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("second Join error = %v, want ErrAlreadyQueued", err)
	}
	// A duplicate with a different role must also be rejected.
	if err := m.Join("alice", RolePriority); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("priority re-join error = %v, want ErrAlreadyQueued", err)
	}
	if got := m.Snapshot(); len(got) != 1 || got[0] != "alice" {
		t.Errorf("Snapshot() after duplicate joins = %v, want [alice]", got)
	}
}

func TestPriorityInsertion(t *testing.T) {
	tests := []struct {
		name  string
		joins []Participant
		want  []string
	}{
		{
			name: "priority jumps ahead of defaults",
			joins: []Participant{
				{"alice", RoleDefault},
				{"bob", RoleDefault},
				{"sub1", RolePriority},
			},
			want: []string{"sub1", "alice", "bob"},
		},
		{
			name: "priority entries stay FIFO among themselves",
			joins: []Participant{
				{"alice", RoleDefault},
				{"sub1", RolePriority},
				{"sub2", RolePriority},
				{"bob", RoleDefault},
			},
			want: []string{"sub1", "sub2", "alice", "bob"},
		},
		{
			name: "priority into empty queue",
			joins: []Participant{
				{"sub1", RolePriority},
				{"alice", RoleDefault},
			},
			want: []string{"sub1", "alice"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			for _, j := range tt.joins {
				if err := m.Join(j.Login, j.Role); err != nil {
					t.Fatalf("Join(%q) error: %v", j.Login, err)
				}
			}
			got := m.Snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("Snapshot() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Snapshot()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLeaveAndNext(t *testing.T) {
	m := NewManager()
	if _, err := m.Next(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Next() on empty queue error = %v, want ErrEmpty", err)
	}
	_ = m.Join("alice", RoleDefault)
	_ = m.Join("bob", RoleDefault)
	if !m.Leave("alice") {
		t.Error("Leave(alice) = false, want true")
	}
	if m.Leave("alice") {
		t.Error("second Leave(alice) = true, want false")
	}
	p, err := m.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if p.Login != "bob" {
		t.Errorf("Next() = %q, want bob", p.Login)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestPosition(t *testing.T) {
	m := NewManager()
	_ = m.Join("alice", RoleDefault)
	_ = m.Join("bob", RoleDefault)
	if got := m.Position("bob"); got != 2 {
		t.Errorf("Position(bob) = %d, want 2", got)
	}
	if got := m.Position("nobody"); got != 0 {
		t.Errorf("Position(nobody) = %d, want 0", got)
	}
}

func TestConcurrentJoinsAndSnapshots(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = m.Join(fmt.Sprintf("user%d", n), RoleDefault)
		}(i)
		go func() {
			defer wg.Done()
			snap := m.Snapshot()
			seen := make(map[string]bool, len(snap))
			for _, login := range snap {
				if seen[login] {
					t.Errorf("torn snapshot: duplicate %q", login)
				}
				seen[login] = true
			}
		}()
	}
	wg.Wait()
	if m.Len() != 50 {
		t.Errorf("Len() = %d, want 50", m.Len())
	}
}
