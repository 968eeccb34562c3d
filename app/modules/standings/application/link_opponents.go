package standingsservice

import (
	"fmt"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
)

type slotKey struct {
	army  int
	round int
}

type gameKey struct {
	round int
	id    string
}

// linkOpponents resolves each attached round's opponent. A report naming its opponent's
// participant key is linked directly; otherwise the two reports sharing a game id in a
// round are paired. A report with neither adopts the single army that points at it.
// A link is cleared when the opponent's report for that round names someone else; an
// opponent with no report for the round keeps the one-sided link. Every round left
// without an opponent gets an OpponentUnresolved warning.
func linkOpponents(idx *eventIndex, attached []attachedRound, ds *diagnostics.Diagnostics) {
	var (
		proposed  = make(map[slotKey]int, len(attached))
		games     = make(map[gameKey][]attachedRound)
		gameOrder []gameKey
		keyless   []attachedRound
	)

	unresolved := func(ar attachedRound, key, reason string) {
		army := idx.armies[ar.army]
		d := ds.AddError(&diagnostics.OpponentUnresolvedError{
			ArmyID: army.ID,
			Round:  ar.report.RoundNumber,
			Key:    key,
			Reason: reason,
		})
		d.Player = army.PlayerName
	}

	for _, ar := range attached {
		slot := slotKey{army: ar.army, round: ar.report.RoundNumber}
		switch {
		case ar.report.OpponentID != "":
			opp, ok := idx.lookup(ar.report.OpponentID)
			switch {
			case !ok:
				unresolved(ar, ar.report.OpponentID, "unknown participant")
			case opp == ar.army:
				unresolved(ar, ar.report.OpponentID, "opponent is the army itself")
			default:
				proposed[slot] = opp
			}
		case ar.report.GameID != "":
			gk := gameKey{round: ar.report.RoundNumber, id: ar.report.GameID}
			if _, seen := games[gk]; !seen {
				gameOrder = append(gameOrder, gk)
			}
			games[gk] = append(games[gk], ar)
		default:
			keyless = append(keyless, ar)
		}
	}

	for _, gk := range gameOrder {
		members := games[gk]
		switch len(members) {
		case 1:
			keyless = append(keyless, members[0])
		case 2:
			a, b := members[0].army, members[1].army
			if a == b {
				unresolved(members[0], gk.id, "both reports of the game belong to one army")
				continue
			}
			proposed[slotKey{army: a, round: gk.round}] = b
			proposed[slotKey{army: b, round: gk.round}] = a
		default:
			for _, ar := range members {
				unresolved(ar, gk.id, fmt.Sprintf("game has %d reports, want 2", len(members)))
			}
		}
	}

	pointers := make(map[slotKey][]int, len(proposed))
	for slot, opp := range proposed {
		target := slotKey{army: opp, round: slot.round}
		pointers[target] = append(pointers[target], slot.army)
	}
	for _, ar := range keyless {
		slot := slotKey{army: ar.army, round: ar.report.RoundNumber}
		if from := pointers[slot]; len(from) == 1 {
			proposed[slot] = from[0]
			continue
		}
		unresolved(ar, ar.report.GameID, "no opponent key supplied")
	}

	var cleared []slotKey
	for _, ar := range attached {
		slot := slotKey{army: ar.army, round: ar.report.RoundNumber}
		opp, ok := proposed[slot]
		if !ok {
			continue
		}
		back, ok := proposed[slotKey{army: opp, round: slot.round}]
		if ok && back == slot.army {
			continue
		}
		// Nothing on the other side can contradict the link.
		if idx.armies[opp].RoundFor(slot.round) < 0 {
			continue
		}
		unresolved(ar, idx.armies[opp].CorrelationKey(), "opponent does not report this game")
		cleared = append(cleared, slot)
	}
	for _, slot := range cleared {
		delete(proposed, slot)
	}

	for slot, opp := range proposed {
		army := &idx.armies[slot.army]
		if i := army.RoundFor(slot.round); i >= 0 {
			army.RoundPerformance[i].Opponent = armytypes.Ptr(idx.armies[opp].ID)
		}
	}
}
