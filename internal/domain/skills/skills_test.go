package skills_test

import (
	"testing"

	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw skill text", t, func() {
		Convey("When it has mixed case, padding, blanks and duplicates", func() {
			s := skills.Normalize([]string{" Python", "SQL ", "", "   ", "python", "Go"})

			Convey("Then tokens are trimmed, lower-cased and unique in first-seen order", func() {
				So(s.Len(), ShouldEqual, 3)
				So(s.Strings(), ShouldResemble, []string{"python", "sql", "go"})
				So(s.Contains("python"), ShouldBeTrue)
				So(s.Contains("Python"), ShouldBeFalse)
			})
		})

		Convey("When input is nil", func() {
			s := skills.Normalize(nil)
			So(s.Len(), ShouldEqual, 0)
			So(s.Tokens(), ShouldBeEmpty)
		})

		Convey("When the zero Set is used directly", func() {
			var s skills.Set
			So(s.Len(), ShouldEqual, 0)
			So(s.Contains("x"), ShouldBeFalse)
			So(s.Difference(skills.Normalize([]string{"a"})).Len(), ShouldEqual, 0)
		})
	})
}

func TestSetAlgebra(t *testing.T) {
	Convey("Given two token sets", t, func() {
		a := skills.Normalize([]string{"go", "sql", "react"})
		b := skills.Normalize([]string{"React", "docker", "GO"})

		So(a.Difference(b).Strings(), ShouldResemble, []string{"sql"})
		So(b.Difference(a).Strings(), ShouldResemble, []string{"docker"})
		So(a.Intersect(b).Strings(), ShouldResemble, []string{"go", "react"})

		Convey("Then Tokens returns a copy", func() {
			tokens := a.Tokens()
			tokens[0] = "mutated"
			So(a.Tokens()[0], ShouldEqual, skills.Token("go"))
		})
	})
}

func TestFromParticipant(t *testing.T) {
	Convey("Given a participant with skills and interests", t, func() {
		p := model.Participant{
			ID: "p1",
			Skills: []model.Skill{
				{Name: "Python", Level: model.LevelExpert},
				{Name: "python", Level: model.LevelBeginner},
				{Name: "SQL"},
			},
			Interests: []string{"AI", " Health "},
		}

		So(skills.FromParticipantSkills(p).Strings(), ShouldResemble, []string{"python", "sql"})
		So(skills.FromInterests(p).Strings(), ShouldResemble, []string{"ai", "health"})
	})
}
