package signaling

import "testing"

func pairingFixture(t *testing.T) (*Registry, *Engine) {
	t.Helper()
	reg := NewRegistry(false)
	return reg, NewEngine(reg)
}

func TestFirstJoinWaitsForCounterpart(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	result, err := engine.Join("r1", &Peer{ID: "d1", Role: RoleDoctor})
	if err != nil {
		t.Fatalf("Join returned error: %v", err)
	}
	if result.State != StateWaitingForCounterpart {
		t.Errorf("Expected waitingForCounterpart, got %s", result.State)
	}
	if result.Counterpart != nil {
		t.Error("Expected no counterpart for the first join")
	}
	if result.Room.State() != StateWaitingForCounterpart {
		t.Errorf("Expected room state to follow, got %s", result.Room.State())
	}
}

func TestDoctorJoiningWaitingPatientAutoAccepts(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	patient := &Peer{ID: "p1", DisplayName: "Bob", Role: RolePatient}
	doctor := &Peer{ID: "d1", DisplayName: "Dr.A", Role: RoleDoctor}

	engine.Join("r1", patient)
	result, err := engine.Join("r1", doctor)
	if err != nil {
		t.Fatalf("Doctor join returned error: %v", err)
	}
	if result.State != StatePaired {
		t.Errorf("Expected paired, got %s", result.State)
	}
	if !result.AutoAccepted {
		t.Error("Expected doctor-joins-second to auto-accept")
	}
	if result.Counterpart != patient {
		t.Error("Expected counterpart to be the waiting patient")
	}
}

func TestPatientJoiningWaitingDoctorAwaitsAcceptance(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	patient := &Peer{ID: "p1", Role: RolePatient}

	engine.Join("r1", doctor)
	result, err := engine.Join("r1", patient)
	if err != nil {
		t.Fatalf("Patient join returned error: %v", err)
	}
	if result.State != StateAwaitingAcceptance {
		t.Errorf("Expected awaitingAcceptance, got %s", result.State)
	}
	if result.AutoAccepted {
		t.Error("Expected no auto-accept for a patient-initiated pairing")
	}
	if result.Counterpart != doctor {
		t.Error("Expected counterpart to be the waiting doctor")
	}
}

func TestSameRoleJoinRejected(t *testing.T) {
	reg, engine := pairingFixture(t)
	room, _ := reg.Create("r1", nil)

	engine.Join("r1", &Peer{ID: "d1", Role: RoleDoctor})
	_, err := engine.Join("r1", &Peer{ID: "d2", Role: RoleDoctor})
	if err != ErrInvalidRoleCombination {
		t.Errorf("Expected ErrInvalidRoleCombination for second doctor, got %v", err)
	}
	if room.MemberCount() != 1 {
		t.Errorf("Expected rejected doctor to stay out, got %d members", room.MemberCount())
	}
	if _, ok := room.Member("d2"); ok {
		t.Error("Expected d2 not to be admitted")
	}
}

func TestThirdJoinRejected(t *testing.T) {
	reg, engine := pairingFixture(t)
	room, _ := reg.Create("r1", nil)

	engine.Join("r1", &Peer{ID: "d1", Role: RoleDoctor})
	engine.Join("r1", &Peer{ID: "p1", Role: RolePatient})

	if _, err := engine.Join("r1", &Peer{ID: "p2", Role: RolePatient}); err != ErrInvalidRoleCombination {
		t.Errorf("Expected second patient to be rejected, got %v", err)
	}
	if _, err := engine.Join("r1", &Peer{ID: "d2", Role: RoleDoctor}); err != ErrInvalidRoleCombination {
		t.Errorf("Expected second doctor to be rejected, got %v", err)
	}
	if room.MemberCount() != 2 {
		t.Errorf("Expected room to keep exactly 2 members, got %d", room.MemberCount())
	}
}

func TestJoinUnknownRoleRejected(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	if _, err := engine.Join("r1", &Peer{ID: "x1", Role: "nurse"}); err != ErrInvalidRoleCombination {
		t.Errorf("Expected unknown role to be rejected, got %v", err)
	}
}

func TestJoinWhileAlreadyInRoom(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)
	reg.Create("r2", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	engine.Join("r1", doctor)

	if _, err := engine.Join("r2", doctor); err != ErrAlreadyInRoom {
		t.Errorf("Expected ErrAlreadyInRoom, got %v", err)
	}
}

func TestJoinMissingRoom(t *testing.T) {
	_, engine := pairingFixture(t)

	if _, err := engine.Join("nope", &Peer{ID: "d1", Role: RoleDoctor}); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestAcceptPairsBothPeers(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	patient := &Peer{ID: "p1", Role: RolePatient}
	engine.Join("r1", doctor)
	engine.Join("r1", patient)

	pair, err := engine.Accept("r1", doctor)
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if pair == nil || pair.Doctor != doctor || pair.Patient != patient {
		t.Fatalf("Expected pair of d1 and p1, got %+v", pair)
	}

	room, _ := reg.Get("r1")
	if room.State() != StatePaired {
		t.Errorf("Expected paired state, got %s", room.State())
	}
}

func TestAcceptFromPatientUnauthorized(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	patient := &Peer{ID: "p1", Role: RolePatient}
	engine.Join("r1", doctor)
	engine.Join("r1", patient)

	if _, err := engine.Accept("r1", patient); err != ErrUnauthorizedAcceptance {
		t.Errorf("Expected ErrUnauthorizedAcceptance from patient, got %v", err)
	}

	room, _ := reg.Get("r1")
	if room.State() != StateAwaitingAcceptance {
		t.Errorf("Expected room to stay awaiting acceptance, got %s", room.State())
	}
}

func TestAcceptOutsideWindowIsNoOp(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	engine.Join("r1", doctor)

	pair, err := engine.Accept("r1", doctor)
	if err != nil || pair != nil {
		t.Errorf("Expected accept while waiting to be a no-op, got %+v, %v", pair, err)
	}

	if _, err := engine.Accept("ghost", doctor); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound for unknown room, got %v", err)
	}
}

func TestRejectRemovesDoctorAndKeepsPatientWaiting(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	patient := &Peer{ID: "p1", Role: RolePatient}
	engine.Join("r1", doctor)
	engine.Join("r1", patient)

	pair, err := engine.Reject("r1", doctor)
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if pair == nil || pair.Patient != patient {
		t.Fatal("Expected reject to name the waiting patient")
	}

	room, _ := reg.Get("r1")
	if room.State() != StateWaitingForCounterpart {
		t.Errorf("Expected patient back to waiting, got %s", room.State())
	}
	if room.Doctor() != nil {
		t.Error("Expected rejecting doctor to be removed")
	}
	if doctor.RoomID != "" {
		t.Error("Expected doctor's room reference to be cleared")
	}
	if _, ok := room.Member("p1"); !ok {
		t.Error("Expected patient to remain a member")
	}
}

func TestRejectFromPatientUnauthorized(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	patient := &Peer{ID: "p1", Role: RolePatient}
	engine.Join("r1", doctor)
	engine.Join("r1", patient)

	if _, err := engine.Reject("r1", patient); err != ErrUnauthorizedAcceptance {
		t.Errorf("Expected ErrUnauthorizedAcceptance, got %v", err)
	}
}

func TestDepartMidAcceptanceUnwindsRoom(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)

	doctor := &Peer{ID: "d1", Role: RoleDoctor}
	patient := &Peer{ID: "p1", Role: RolePatient}
	engine.Join("r1", doctor)
	engine.Join("r1", patient)

	result := engine.Depart("r1", "p1")
	if result == nil || result.Survivor != doctor {
		t.Fatal("Expected the doctor to survive the patient's departure")
	}

	room, _ := reg.Get("r1")
	if room.State() != StateWaitingForCounterpart {
		t.Errorf("Expected room back to waiting, got %s", room.State())
	}
	if _, ok := room.Member("p1"); ok {
		t.Error("Expected no stale patient entry after departure")
	}

	// Second depart for the same peer is a no-op.
	if engine.Depart("r1", "p1") != nil {
		t.Error("Expected repeated depart to return nil")
	}
}

func TestDepartLastMember(t *testing.T) {
	reg, engine := pairingFixture(t)
	reg.Create("r1", nil)
	engine.Join("r1", &Peer{ID: "d1", Role: RoleDoctor})

	result := engine.Depart("r1", "d1")
	if result == nil || result.Survivor != nil {
		t.Fatal("Expected departure with no survivor")
	}
	if _, ok := reg.Get("r1"); ok {
		t.Error("Expected emptied room to be deleted")
	}
}
