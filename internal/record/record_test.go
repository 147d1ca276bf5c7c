package record

import "testing"

func TestCourse_Remaining(t *testing.T) {
	c := Course{Name: "CS101", Capacity: 3, Enrolled: []string{"alice", "bob"}}
	if got := c.Remaining(); got != 1 {
		t.Errorf("Remaining() = %d, want 1", got)
	}
	if !c.HasStudent("alice") {
		t.Error("HasStudent(alice) = false, want true")
	}
	if c.HasStudent("ghost") {
		t.Error("HasStudent(ghost) = true, want false")
	}
}

func TestRemove(t *testing.T) {
	in := []string{"a", "b", "c"}
	got := Remove(in, "b")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Remove() = %v, want [a c]", got)
	}
	if len(in) != 3 {
		t.Errorf("input modified: %v", in)
	}

	if got := Remove([]string{"a"}, "ghost"); len(got) != 1 {
		t.Errorf("Remove(absent) = %v, want [a]", got)
	}
}

func TestCredential_Verify(t *testing.T) {
	cred, err := NewCredential("secret")
	if err != nil {
		t.Fatalf("NewCredential() failed: %v", err)
	}
	if string(cred) == "secret" {
		t.Fatal("credential stored in plaintext")
	}
	if !cred.Verify("secret") {
		t.Error("Verify(correct) = false, want true")
	}
	if cred.Verify("wrong") {
		t.Error("Verify(wrong) = true, want false")
	}
}
