package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/JericNisperos/pvparena/internal/domain/elo"
	"github.com/JericNisperos/pvparena/internal/domain/model"
	"github.com/JericNisperos/pvparena/pkg/logger"
	"github.com/JericNisperos/pvparena/pkg/metrics"
)

// Rating changes at or below this magnitude are still persisted but not
// announced.
const negligibleDelta = 0.01

// Settle converts one match result into a batch of rating writes. It
// never returns an error for bad input or storage trouble: a broken
// result is logged and dropped so the match outcome itself is never
// affected.
func (s *Service) Settle(ctx context.Context, r model.Result) error {
	start := time.Now()
	defer func() {
		metrics.RecordSettlementLatency(float64(time.Since(start).Milliseconds()))
	}()

	if !s.Enabled() {
		metrics.RecordResultSkipped("disabled")
		return nil
	}

	participants := resolvable(r.Participants)
	if len(participants) == 0 || len(r.Winners) == 0 {
		metrics.RecordResultSkipped("empty_match")
		s.logger.Warn(ctx, "skipping settlement of empty match",
			logger.String("match_id", r.MatchID),
			logger.Int("participants", len(participants)),
			logger.Int("winners", len(r.Winners)),
		)
		return nil
	}

	scope := s.scopeFor(r.Arena)

	// Snapshot all ratings up front so every comparison in this
	// settlement sees the same values.
	ratings := make(map[string]float64, len(participants))
	for _, p := range participants {
		if _, ok := ratings[p.PlayerID]; !ok {
			ratings[p.PlayerID] = s.store.GetRating(ctx, p.PlayerID, scope, s.initialRating)
		}
	}

	var deltas map[string]float64
	switch r.Mode {
	case model.Team:
		deltas = s.settleTeams(participants, r.Winners, ratings)
	case model.FreeForAll:
		deltas = s.settleFreeForAll(participants, r.Winners, ratings)
	default:
		metrics.RecordResultSkipped("unknown_mode")
		s.logger.Warn(ctx, "skipping settlement with unknown mode",
			logger.String("match_id", r.MatchID),
			logger.String("mode", string(r.Mode)),
		)
		return nil
	}

	for playerID, delta := range deltas {
		oldRating := ratings[playerID]
		newRating := elo.ClampRating(oldRating + delta)

		if !s.store.UpsertRating(ctx, playerID, scope, newRating) {
			continue
		}
		metrics.RecordRatingUpdate()

		if math.Abs(delta) <= negligibleDelta {
			continue
		}
		s.logger.Info(ctx, "rating changed",
			logger.String("match_id", r.MatchID),
			logger.String("player_id", playerID),
			logger.String("scope", scope),
			logger.Float64("old_rating", oldRating),
			logger.Float64("new_rating", newRating),
			logger.Float64("delta", delta),
		)
	}

	metrics.RecordResultProcessed()
	return nil
}

// resolvable drops participants without a player identity. They take no
// part in the settlement and receive no delta.
func resolvable(in []model.Participant) []model.Participant {
	out := make([]model.Participant, 0, len(in))
	for _, p := range in {
		if p.PlayerID != "" {
			out = append(out, p)
		}
	}
	return out
}

// settleTeams computes per-player deltas for a team match. Each team is
// reduced to the mean of its members' ratings, compared pairwise against
// every other team, and its accumulated delta is split evenly among its
// members.
//
// A draw is declared only when every team has at least one member in
// the winners set.
func (s *Service) settleTeams(participants []model.Participant, winners map[string]bool, ratings map[string]float64) map[string]float64 {
	teams := make(map[string][]string)
	for _, p := range participants {
		teams[p.Team] = append(teams[p.Team], p.PlayerID)
	}
	if len(teams) == 0 {
		return nil
	}

	names := make([]string, 0, len(teams))
	for name := range teams {
		names = append(names, name)
	}
	sort.Strings(names)

	teamRatings := make(map[string]float64, len(teams))
	teamWon := make(map[string]bool, len(teams))
	for _, name := range names {
		teamRatings[name] = elo.AverageTeamRating(teams[name], ratings, s.initialRating)
		for _, member := range teams[name] {
			if winners[member] {
				teamWon[name] = true
				break
			}
		}
	}

	draw := true
	for _, name := range names {
		if !teamWon[name] {
			draw = false
			break
		}
	}

	deltas := make(map[string]float64)
	for _, name := range names {
		var total float64
		for _, opponent := range names {
			if opponent == name {
				continue
			}
			actual := elo.ScoreLoss
			if draw {
				actual = elo.ScoreDraw
			} else if teamWon[name] {
				actual = elo.ScoreWin
			}
			total += elo.Delta(teamRatings[name], teamRatings[opponent], actual, s.kFactor)
		}
		for member, share := range elo.DistributeTeamDelta(teams[name], total) {
			deltas[member] += share
		}
	}
	return deltas
}

// settleFreeForAll computes per-player deltas for a match without team
// structure. Every participant is compared against every other; winners
// take full win credit in each comparison, everyone else full loss
// credit. There is no draw outcome in this mode.
func (s *Service) settleFreeForAll(participants []model.Participant, winners map[string]bool, ratings map[string]float64) map[string]float64 {
	deltas := make(map[string]float64)
	for _, p := range participants {
		actual := elo.ScoreLoss
		if winners[p.PlayerID] {
			actual = elo.ScoreWin
		}
		for _, o := range participants {
			if o.PlayerID == p.PlayerID {
				continue
			}
			deltas[p.PlayerID] += elo.Delta(ratings[p.PlayerID], ratings[o.PlayerID], actual, s.kFactor)
		}
	}
	return deltas
}
