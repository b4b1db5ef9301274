package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	repository "github.com/JericNisperos/pvparena/internal/adapters/repository"
	"github.com/JericNisperos/pvparena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return repository.NewSQLStore(filepath.Join(t.TempDir(), "elo.db"))
}

func TestSQLStoreRoundTrip(t *testing.T) {
	Convey("Given a fresh store", t, func() {
		store := newTestStore(t)
		defer store.Close()
		ctx := context.Background()

		Convey("When nothing has been written", func() {
			Convey("Then reads return the supplied default", func() {
				So(store.GetRating(ctx, "p1", "", 1000), ShouldAlmostEqual, 1000.0, 1e-9)
				So(store.GetRating(ctx, "p1", "arena-a", 750), ShouldAlmostEqual, 750.0, 1e-9)
			})

			Convey("And GetRecord reports absence", func() {
				_, err := store.GetRecord(ctx, "p1", "")
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When a rating is upserted", func() {
			So(store.UpsertRating(ctx, "p1", "", 1012.5), ShouldBeTrue)

			Convey("Then the stored value comes back, not the default", func() {
				So(store.GetRating(ctx, "p1", "", 1000), ShouldAlmostEqual, 1012.5, 1e-9)
			})

			Convey("And the record starts with one match played", func() {
				rec, err := store.GetRecord(ctx, "p1", "")
				So(err, ShouldBeNil)
				So(rec.MatchesPlayed, ShouldEqual, 1)
				So(rec.LastUpdated.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the same pair is upserted twice", func() {
			So(store.UpsertRating(ctx, "p1", "", 1012), ShouldBeTrue)
			So(store.UpsertRating(ctx, "p1", "", 1020), ShouldBeTrue)

			Convey("Then matches_played increments and the rating is replaced", func() {
				rec, err := store.GetRecord(ctx, "p1", "")
				So(err, ShouldBeNil)
				So(rec.MatchesPlayed, ShouldEqual, 2)
				So(rec.Rating, ShouldAlmostEqual, 1020.0, 1e-9)
			})
		})

		Convey("When the same player is written in two scopes", func() {
			So(store.UpsertRating(ctx, "p1", "", 1100), ShouldBeTrue)
			So(store.UpsertRating(ctx, "p1", "arena-a", 900), ShouldBeTrue)

			Convey("Then the scopes stay independent", func() {
				So(store.GetRating(ctx, "p1", "", 1000), ShouldAlmostEqual, 1100.0, 1e-9)
				So(store.GetRating(ctx, "p1", "arena-a", 1000), ShouldAlmostEqual, 900.0, 1e-9)
			})

			Convey("And the player counts once", func() {
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})
}

func TestSQLStoreTopRatings(t *testing.T) {
	Convey("Given three rated players in one scope", t, func() {
		store := newTestStore(t)
		defer store.Close()
		ctx := context.Background()

		So(store.UpsertRating(ctx, "alice", "", 1200), ShouldBeTrue)
		So(store.UpsertRating(ctx, "bob", "", 1000), ShouldBeTrue)
		So(store.UpsertRating(ctx, "carol", "", 1500), ShouldBeTrue)

		Convey("When requesting the top two", func() {
			entries := store.TopRatings(ctx, 2, "")

			Convey("Then the highest ratings come first with 1-based ranks", func() {
				So(len(entries), ShouldEqual, 2)
				So(entries[0].PlayerID, ShouldEqual, "carol")
				So(entries[0].Rating, ShouldAlmostEqual, 1500.0, 1e-9)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].PlayerID, ShouldEqual, "alice")
				So(entries[1].Rating, ShouldAlmostEqual, 1200.0, 1e-9)
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When two players tie", func() {
			So(store.UpsertRating(ctx, "dave", "", 1500), ShouldBeTrue)
			entries := store.TopRatings(ctx, 2, "")

			Convey("Then player id breaks the tie deterministically", func() {
				So(entries[0].PlayerID, ShouldEqual, "carol")
				So(entries[1].PlayerID, ShouldEqual, "dave")
			})
		})

		Convey("When another scope holds ratings", func() {
			So(store.UpsertRating(ctx, "zed", "arena-a", 9000), ShouldBeTrue)
			entries := store.TopRatings(ctx, 10, "")

			Convey("Then it does not leak into the global leaderboard", func() {
				for _, e := range entries {
					So(e.PlayerID, ShouldNotEqual, "zed")
				}
			})
		})

		Convey("When the limit is not positive", func() {
			Convey("Then no entries are returned", func() {
				So(store.TopRatings(ctx, 0, ""), ShouldBeNil)
			})
		})
	})
}

func TestSQLStoreSurvivesReopen(t *testing.T) {
	Convey("Given ratings written through one store handle", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("logger init: %v", err)
		}
		path := filepath.Join(t.TempDir(), "elo.db")
		ctx := context.Background()

		first := repository.NewSQLStore(path)
		So(first.UpsertRating(ctx, "p1", "", 1234), ShouldBeTrue)
		So(first.Close(), ShouldBeNil)

		Convey("When a new handle opens the same file", func() {
			second := repository.NewSQLStore(path)
			defer second.Close()

			Convey("Then the rating survived the restart", func() {
				So(second.GetRating(ctx, "p1", "", 1000), ShouldAlmostEqual, 1234.0, 1e-9)
			})
		})
	})
}

func TestSQLStoreConnect(t *testing.T) {
	Convey("Given a store on a writable path", t, func() {
		store := newTestStore(t)
		defer store.Close()

		Convey("Then Connect succeeds", func() {
			So(store.Connect(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given a store pointed at an unwritable location", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("logger init: %v", err)
		}
		store := repository.NewSQLStore("/nonexistent-dir/sub/elo.db")
		defer store.Close()
		ctx := context.Background()

		Convey("Then Connect reports the store unavailable", func() {
			So(store.Connect(ctx), ShouldNotBeNil)
		})

		Convey("And reads degrade to the default instead of failing", func() {
			So(store.GetRating(ctx, "p1", "", 1000), ShouldAlmostEqual, 1000.0, 1e-9)
		})

		Convey("And writes are dropped, not raised", func() {
			So(store.UpsertRating(ctx, "p1", "", 1200), ShouldBeFalse)
		})
	})
}
