package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RaeezAli/Chat-App/roster"
)

func TestCopyDocIsIndependent(t *testing.T) {
	src := &roster.CallDoc{
		Active:    true,
		StartedBy: "alice",
		Participants: []roster.Participant{
			{UserID: "alice"},
			{UserID: "bob"},
		},
	}

	cp := copyDoc(src)
	cp.Participants[0].UserID = "mallory"
	cp.Participants = append(cp.Participants, roster.Participant{UserID: "carol"})

	assert.Equal(t, "alice", src.Participants[0].UserID)
	assert.Len(t, src.Participants, 2)
}
