package model_test

import (
	"testing"

	"github.com/JericNisperos/pvparena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMode(t *testing.T) {
	Convey("Given the known settlement modes", t, func() {
		Convey("Then ffa and team are valid", func() {
			So(model.FreeForAll.Valid(), ShouldBeTrue)
			So(model.Team.Valid(), ShouldBeTrue)
		})

		Convey("And anything else is not", func() {
			So(model.Mode("").Valid(), ShouldBeFalse)
			So(model.Mode("duel").Valid(), ShouldBeFalse)
		})
	})
}

func TestResultIsWinner(t *testing.T) {
	Convey("Given a result with a winner set", t, func() {
		res := model.Result{
			Winners: map[string]bool{"p1": true},
		}

		Convey("Then members of the set win", func() {
			So(res.IsWinner("p1"), ShouldBeTrue)
		})

		Convey("And everyone else does not", func() {
			So(res.IsWinner("p2"), ShouldBeFalse)
		})
	})

	Convey("Given a result with no winner set at all", t, func() {
		res := model.Result{}

		Convey("Then lookups are safe and negative", func() {
			So(res.IsWinner("p1"), ShouldBeFalse)
		})
	})
}
