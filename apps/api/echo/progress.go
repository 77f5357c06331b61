package echoapi

import (
	"math"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/task"
)

type (
	progressGroup struct {
		TotalStudents        int     `json:"total_students"`
		TotalTasks           int     `json:"total_tasks"`
		CompletedSubmissions int     `json:"completed_submissions"`
		CompletionRate       float64 `json:"completion_rate"`
	}

	taskProgress struct {
		TaskID         string  `json:"task_id"`
		Completed      int     `json:"completed"`
		TotalStudents  int     `json:"total_students"`
		Pending        int     `json:"pending"`
		CompletionRate float64 `json:"completion_rate"`
	}

	overallStats struct {
		TotalStudents    int     `json:"total_students"`
		TotalTasks       int     `json:"total_tasks"`
		TotalSubmissions int     `json:"total_submissions"`
		CompletionRate   float64 `json:"completion_rate"`
	}

	progressReport struct {
		CampusWise   map[string]progressGroup `json:"campus_wise"`
		GradeWise    map[string]progressGroup `json:"grade_wise"`
		SectionWise  map[string]progressGroup `json:"section_wise"`
		TaskWise     map[string]taskProgress  `json:"task_wise"`
		OverallStats overallStats             `json:"overall_stats"`
	}
)

func rate(actual, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return math.Round(float64(actual)/float64(possible)*100*100) / 100
}

// progressData aggregates completion rates per campus, grade, section and
// task. All aggregation runs over in-memory snapshots; the roster is small
// enough that this beats a thicket of GROUP BY queries.
func (api *taskApi) progressData(ctx echo.Context, campusFilter string) (*progressReport, error) {
	rctx := ctx.Request().Context()

	students, err := api.identitySvc.QueryStudents(rctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	if campusFilter != "" {
		filtered := make([]identity.Identity, 0, len(students))
		for _, s := range students {
			if s.Campus == campusFilter {
				filtered = append(filtered, s)
			}
		}
		students = filtered
	}

	tasks, err := api.taskSvc.QueryAll(rctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}

	// one submission count lookup per student
	subCounts := make(map[string]int, len(students))
	for _, s := range students {
		subs, err := api.taskSvc.QuerySubmissionsByStudent(rctx, s.ExternalID)
		if err != nil {
			return nil, errors.Wrap(err, "querying student submissions")
		}
		subCounts[s.ExternalID] = len(subs)
	}

	report := &progressReport{
		CampusWise:  make(map[string]progressGroup),
		GradeWise:   make(map[string]progressGroup),
		SectionWise: make(map[string]progressGroup),
		TaskWise:    make(map[string]taskProgress),
	}

	group := func(members []identity.Identity, matched []task.Task) progressGroup {
		var actual int
		for _, s := range members {
			actual += subCounts[s.ExternalID]
		}
		possible := len(members) * len(matched)
		return progressGroup{
			TotalStudents:        len(members),
			TotalTasks:           len(matched),
			CompletedSubmissions: actual,
			CompletionRate:       rate(actual, possible),
		}
	}

	for _, campus := range identity.DefaultCampuses {
		var members []identity.Identity
		for _, s := range students {
			if s.Campus == campus.Name {
				members = append(members, s)
			}
		}
		var matched []task.Task
		for _, t := range tasks {
			if t.TargetsCampus(campus.Name) {
				matched = append(matched, t)
			}
		}
		report.CampusWise[campus.Name] = group(members, matched)
	}

	for _, grade := range identity.DefaultGrades {
		var members []identity.Identity
		for _, s := range students {
			if s.Grade == grade {
				members = append(members, s)
			}
		}
		var matched []task.Task
		for _, t := range tasks {
			if t.TargetsGrade(grade) {
				matched = append(matched, t)
			}
		}
		report.GradeWise[grade] = group(members, matched)
	}

	// only sections that have students are reported
	for _, section := range identity.DefaultSections {
		var members []identity.Identity
		for _, s := range students {
			if s.Section == section {
				members = append(members, s)
			}
		}
		if len(members) == 0 {
			continue
		}
		report.SectionWise[section] = group(members, tasks)
	}

	for _, t := range tasks {
		completions, err := api.taskSvc.CompletionCount(rctx, t.ID)
		if err != nil {
			return nil, errors.Wrap(err, "counting task completions")
		}
		var total int
		for _, campus := range t.CampusTargets {
			for _, grade := range t.GradeTargets {
				assigned, err := api.identitySvc.QueryStudentsByCampusGrade(rctx, campus, grade)
				if err != nil {
					return nil, errors.Wrap(err, "querying assigned students")
				}
				total += len(assigned)
			}
		}
		report.TaskWise[t.Title] = taskProgress{
			TaskID:         t.ID,
			Completed:      completions,
			TotalStudents:  total,
			Pending:        total - completions,
			CompletionRate: rate(completions, total),
		}
	}

	var totalSubs int
	for _, n := range subCounts {
		totalSubs += n
	}
	report.OverallStats = overallStats{
		TotalStudents:    len(students),
		TotalTasks:       len(tasks),
		TotalSubmissions: totalSubs,
		CompletionRate:   rate(totalSubs, len(students)*len(tasks)),
	}
	return report, nil
}
