package service_test

import (
	"context"
	"path/filepath"
	"testing"

	repository "github.com/JericNisperos/pvparena/internal/adapters/repository"
	service "github.com/JericNisperos/pvparena/internal/app"
	"github.com/JericNisperos/pvparena/internal/domain/model"
	"github.com/JericNisperos/pvparena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newSettledService(t *testing.T, opts ...service.Option) (*service.Service, repository.Store) {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	store := repository.NewSQLStore(filepath.Join(t.TempDir(), "elo.db"))
	opts = append([]service.Option{
		service.WithStore(store),
		service.WithWorkerCount(1),
	}, opts...)

	s := service.New(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("service start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s, store
}

func seedRating(t *testing.T, store repository.Store, playerID, scope string, rating float64) {
	t.Helper()
	if !store.UpsertRating(context.Background(), playerID, scope, rating) {
		t.Fatalf("seeding rating for %s failed", playerID)
	}
}

func duel(matchID, winner, loser string) model.Result {
	return model.Result{
		MatchID: matchID,
		Mode:    model.FreeForAll,
		Participants: []model.Participant{
			{PlayerID: winner},
			{PlayerID: loser},
		},
		Winners: map[string]bool{winner: true},
	}
}

func TestSettleDuels(t *testing.T) {
	Convey("Given two unrated players", t, func() {
		s, _ := newSettledService(t)
		ctx := context.Background()

		Convey("When the first beats the second at equal ratings", func() {
			So(s.Settle(ctx, duel("m1", "alice", "bob")), ShouldBeNil)

			Convey("Then twelve points move from loser to winner", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1012.0, 1e-9)
				So(s.PlayerRating(ctx, "bob", ""), ShouldAlmostEqual, 988.0, 1e-9)
			})
		})
	})

	Convey("Given an established favorite and an underdog", t, func() {
		s, store := newSettledService(t)
		ctx := context.Background()

		seedRating(t, store, "alice", "", 1200)
		seedRating(t, store, "bob", "", 800)

		Convey("When the favorite wins", func() {
			So(s.Settle(ctx, duel("m1", "alice", "bob")), ShouldBeNil)

			Convey("Then the favorite gains only a sliver", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1202.18, 0.01)
				So(s.PlayerRating(ctx, "bob", ""), ShouldAlmostEqual, 797.82, 0.01)
			})
		})
	})
}

func TestSettleFreeForAll(t *testing.T) {
	Convey("Given three unrated players in a free-for-all", t, func() {
		s, _ := newSettledService(t)
		ctx := context.Background()

		r := model.Result{
			MatchID: "ffa-1",
			Mode:    model.FreeForAll,
			Participants: []model.Participant{
				{PlayerID: "alice"},
				{PlayerID: "bob"},
				{PlayerID: "carol"},
			},
			Winners: map[string]bool{"alice": true},
		}

		Convey("When one of them wins", func() {
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then the winner collects full credit against each opponent", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1024.0, 1e-9)
			})

			Convey("And each loser pays full loss credit against each opponent", func() {
				So(s.PlayerRating(ctx, "bob", ""), ShouldAlmostEqual, 976.0, 1e-9)
				So(s.PlayerRating(ctx, "carol", ""), ShouldAlmostEqual, 976.0, 1e-9)
			})
		})
	})
}

func TestSettleTeams(t *testing.T) {
	Convey("Given a two-versus-two team match at equal ratings", t, func() {
		s, _ := newSettledService(t)
		ctx := context.Background()

		r := model.Result{
			MatchID: "team-1",
			Mode:    model.Team,
			Participants: []model.Participant{
				{PlayerID: "alice", Team: "red"},
				{PlayerID: "bob", Team: "red"},
				{PlayerID: "carol", Team: "blue"},
				{PlayerID: "dave", Team: "blue"},
			},
			Winners: map[string]bool{"alice": true, "bob": true},
		}

		Convey("When the red team wins", func() {
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then the team delta splits evenly among members", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1006.0, 1e-9)
				So(s.PlayerRating(ctx, "bob", ""), ShouldAlmostEqual, 1006.0, 1e-9)
				So(s.PlayerRating(ctx, "carol", ""), ShouldAlmostEqual, 994.0, 1e-9)
				So(s.PlayerRating(ctx, "dave", ""), ShouldAlmostEqual, 994.0, 1e-9)
			})
		})

		Convey("When every team has a winner", func() {
			r.Winners = map[string]bool{"alice": true, "carol": true}
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then the match is a draw and ratings hold", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1000.0, 1e-9)
				So(s.PlayerRating(ctx, "carol", ""), ShouldAlmostEqual, 1000.0, 1e-9)
			})

			Convey("And matches played still increments", func() {
				rec, err := s.PlayerRecord(ctx, "alice", "")
				So(err, ShouldBeNil)
				So(rec.MatchesPlayed, ShouldEqual, 1)
			})
		})
	})
}

func TestSettleEdgeCases(t *testing.T) {
	Convey("Given a running service", t, func() {
		s, store := newSettledService(t)
		ctx := context.Background()

		Convey("When a result has no winners", func() {
			r := duel("m1", "alice", "bob")
			r.Winners = nil
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then nothing is written", func() {
				_, err := s.PlayerRecord(ctx, "alice", "")
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When every participant lacks an identity", func() {
			r := model.Result{
				MatchID:      "m1",
				Mode:         model.FreeForAll,
				Participants: []model.Participant{{PlayerID: ""}, {PlayerID: ""}},
				Winners:      map[string]bool{"ghost": true},
			}
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then the settlement is a no-op", func() {
				So(s.TopN(ctx, 10, ""), ShouldBeNil)
			})
		})

		Convey("When one participant lacks an identity", func() {
			r := model.Result{
				MatchID: "m1",
				Mode:    model.FreeForAll,
				Participants: []model.Participant{
					{PlayerID: "alice"},
					{PlayerID: ""},
					{PlayerID: "bob"},
				},
				Winners: map[string]bool{"alice": true},
			}
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then only the resolvable players are rated", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1012.0, 1e-9)
				So(s.PlayerRating(ctx, "bob", ""), ShouldAlmostEqual, 988.0, 1e-9)
			})
		})

		Convey("When a player sits one step under the ceiling", func() {
			seedRating(t, store, "alice", "", 9995)
			seedRating(t, store, "bob", "", 9995)
			So(s.Settle(ctx, duel("m1", "alice", "bob")), ShouldBeNil)

			Convey("Then the new rating is clamped to the ceiling", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 10000.0, 1e-9)
			})
		})
	})
}

func TestSettleScopes(t *testing.T) {
	Convey("Given per-arena ratings are enabled", t, func() {
		s, _ := newSettledService(t, service.WithPerArena(true))
		ctx := context.Background()

		Convey("When a match settles in a named arena", func() {
			r := duel("m1", "alice", "bob")
			r.Arena = "castle"
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then only the arena scope moves", func() {
				So(s.PlayerRating(ctx, "alice", "castle"), ShouldAlmostEqual, 1012.0, 1e-9)
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1000.0, 1e-9)
			})
		})
	})

	Convey("Given per-arena ratings are disabled", t, func() {
		s, _ := newSettledService(t)
		ctx := context.Background()

		Convey("When a match settles in a named arena", func() {
			r := duel("m1", "alice", "bob")
			r.Arena = "castle"
			So(s.Settle(ctx, r), ShouldBeNil)

			Convey("Then the write lands in the global scope", func() {
				So(s.PlayerRating(ctx, "alice", ""), ShouldAlmostEqual, 1012.0, 1e-9)
				So(s.PlayerRating(ctx, "alice", "castle"), ShouldAlmostEqual, 1012.0, 1e-9)
			})
		})
	})
}
