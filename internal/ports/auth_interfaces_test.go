package ports_test

import (
	"testing"

	mocks "github.com/codexfoods/opsboard/internal/mocks/access"
	"github.com/codexfoods/opsboard/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.PreferenceStore = (*mocks.MemoryPreferenceStore)(nil)
	var _ ports.RoleAssignmentRepository = (*mocks.StubRoleAssignments)(nil)
	var _ ports.UnitDirectory = (*mocks.StubUnitDirectory)(nil)
}
