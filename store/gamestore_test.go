package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	utils "github.com/minaorangina/rails/internal"
	"github.com/minaorangina/rails/protocol"
)

func TestTableLobby(t *testing.T) {
	table := NewTable("ABCDEF", "creator-1")
	utils.AssertEqual(t, table.ID(), "ABCDEF")
	utils.AssertEqual(t, table.CreatorID(), "creator-1")
	utils.AssertEqual(t, table.Started(), false)

	require.NoError(t, table.AddPendingPlayer("creator-1", "alice"))

	t.Log("one player is not enough to start")
	require.ErrorIs(t, table.Start(), ErrNotEnoughPlayers)

	require.NoError(t, table.AddPendingPlayer("p-2", "bola"))
	utils.AssertEqual(t, len(table.Players()), 2)

	info := table.FindPendingPlayer("p-2")
	require.NotNil(t, info)
	utils.AssertEqual(t, info.Name, "bola")
	if table.FindPendingPlayer("nobody") != nil {
		t.Error("expected no player for an unknown ID")
	}

	t.Log("submitting before the game starts fails")
	_, ok := table.Submit(protocol.Action{Player: "alice", Command: protocol.Pass})
	utils.AssertEqual(t, ok, false)
	_, err := table.Prompt()
	utils.AssertErrored(t, err)

	require.NoError(t, table.Start())
	utils.AssertTrue(t, table.Started())

	t.Log("a started table is sealed")
	require.ErrorIs(t, table.Start(), ErrGameAlreadyStarted)
	require.ErrorIs(t, table.AddPendingPlayer("p-3", "carol"), ErrGameAlreadyStarted)
}

func TestTablePlay(t *testing.T) {
	table := NewTable("ABCDEF", "creator-1")
	require.NoError(t, table.AddPendingPlayer("creator-1", "alice"))
	require.NoError(t, table.AddPendingPlayer("p-2", "bola"))

	events := table.Subscribe()
	require.NoError(t, table.Start())

	prompt, err := table.Prompt()
	require.NoError(t, err)
	utils.AssertEqual(t, prompt.Command, protocol.Prompt)
	utils.AssertEqual(t, prompt.Round, "StartRound")
	utils.AssertEqual(t, prompt.CurrentPlayer, "alice")

	msg, ok := table.Submit(protocol.Action{Player: "alice", Command: protocol.BuyItem, Item: "SVR"})
	utils.AssertTrue(t, ok)
	utils.AssertEqual(t, msg.CurrentPlayer, "bola")

	t.Log("an illegal action is rejected without changing the prompt")
	msg, ok = table.Submit(protocol.Action{Player: "alice", Command: protocol.BuyItem, Item: "SVR"})
	utils.AssertEqual(t, ok, false)
	utils.AssertEqual(t, msg.CurrentPlayer, "bola")

	t.Log("engine report lines are retained")
	utils.AssertTrue(t, len(table.Reports()) > 0)

	t.Log("subscribers see reports and prompts")
	var reports, prompts int
	for {
		select {
		case msg := <-events:
			switch msg.Command {
			case protocol.Report:
				reports++
			case protocol.Prompt:
				prompts++
			}
			continue
		default:
		}
		break
	}
	utils.AssertTrue(t, reports > 0)
	utils.AssertTrue(t, prompts > 0)
}

func TestInMemoryGameStore(t *testing.T) {
	s := NewInMemoryGameStore()
	table := NewTable("ABCDEF", "creator-1")

	require.NoError(t, s.AddInactiveGame(table))
	utils.AssertErrored(t, s.AddInactiveGame(table))

	utils.AssertEqual(t, s.FindGame("ABCDEF"), table)
	utils.AssertEqual(t, s.FindInactiveGame("ABCDEF"), table)
	if s.FindActiveGame("ABCDEF") != nil {
		t.Error("an unstarted game should not be active")
	}
	if s.FindGame("XXXXXX") != nil {
		t.Error("expected no table for an unknown ID")
	}

	t.Log("joining an unknown game is a named error")
	err := s.AddPendingPlayer("XXXXXX", "p-1", "alice")
	require.True(t, errors.Is(err, ErrUnknownGameID))

	require.NoError(t, s.AddPendingPlayer("ABCDEF", "creator-1", "alice"))
	require.NoError(t, s.AddPendingPlayer("ABCDEF", "p-2", "bola"))

	info := s.FindPendingPlayer("ABCDEF", "p-2")
	require.NotNil(t, info)
	utils.AssertEqual(t, info.Name, "bola")

	require.NoError(t, table.Start())
	utils.AssertEqual(t, s.FindActiveGame("ABCDEF"), table)
	if s.FindInactiveGame("ABCDEF") != nil {
		t.Error("a started game should not be inactive")
	}
}
