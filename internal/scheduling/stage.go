package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/cadugr/frotawatch/internal/models"
)

// ErrInvalidMove reports a stage transition the board does not allow.
var ErrInvalidMove = errors.New("invalid stage transition")

// moveEvent names the fsm event that lands on a stage.
func moveEvent(to models.Stage) string {
	return "move_to_" + string(to)
}

// newStageMachine builds the Kanban stage machine positioned at current.
// Operators may drag a card between any two distinct columns, but CONCLUIDO
// is terminal: no event leaves it.
func newStageMachine(current models.Stage) *fsm.FSM {
	sources := []string{
		string(models.StageToSchedule),
		string(models.StageScheduled),
		string(models.StageDueToday),
		string(models.StageInShop),
	}

	events := make(fsm.Events, 0, len(models.AllStages))
	for _, dst := range models.AllStages {
		src := make([]string, 0, len(sources))
		for _, s := range sources {
			if s != string(dst) {
				src = append(src, s)
			}
		}
		events = append(events, fsm.EventDesc{
			Name: moveEvent(dst),
			Src:  src,
			Dst:  string(dst),
		})
	}

	return fsm.NewFSM(string(current), events, fsm.Callbacks{})
}

// validateMove checks that a task at from may move to to.
func validateMove(from, to models.Stage) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidMove, to)
	}
	machine := newStageMachine(from)
	if err := machine.Event(context.Background(), moveEvent(to)); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidMove, from, to)
	}
	return nil
}
