// Package seed loads a deterministic set of demo employees and attendance.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/employee"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/clock"

	"go.uber.org/zap"
)

var Departments = []string{
	"Engineering", "Product", "HR", "Sales",
	"Marketing", "Design", "Operations", "Finance",
}

type demoEmployee struct {
	code     string
	fullName string
}

var demoEmployees = []demoEmployee{
	{"EMP001", "Alex Chen"},
	{"EMP002", "Jordan Smith"},
	{"EMP003", "Sam Williams"},
	{"EMP004", "Riley Davis"},
	{"EMP005", "Morgan Taylor"},
	{"EMP006", "Casey Brown"},
	{"EMP007", "Jamie Lee"},
	{"EMP008", "Quinn Martinez"},
	{"EMP009", "Skyler Johnson"},
	{"EMP010", "Taylor Wilson"},
}

type Options struct {
	DaysBack    int
	PresentRate float64
	RandSeed    int64
}

func DefaultOptions() Options {
	return Options{DaysBack: 14, PresentRate: 0.85, RandSeed: 42}
}

type Result struct {
	EmployeesCreated  int
	EmployeesSkipped  int
	AttendanceCreated int
	AttendanceSkipped int
}

type Seeder struct {
	employees  employee.Service
	attendance attendance.Service
	clock      clock.Clock
	logger     *zap.Logger
}

func NewSeeder(employees employee.Service, att attendance.Service, clk clock.Clock, logger ...*zap.Logger) *Seeder {
	l := zap.L().Named("seed")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("seed")
	}
	return &Seeder{employees: employees, attendance: att, clock: clk, logger: l}
}

// Run is safe to repeat: rows that already exist are counted as skipped.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	rng := rand.New(rand.NewSource(opts.RandSeed))

	for _, demo := range demoEmployees {
		req := employee.CreateEmployeeRequest{
			EmployeeID: demo.code,
			FullName:   demo.fullName,
			Email:      emailFor(demo.fullName),
			Department: Departments[rng.Intn(len(Departments))],
		}
		_, err := s.employees.Create(ctx, req)
		switch {
		case err == nil:
			res.EmployeesCreated++
		case apperror.HasCode(err, apperror.CodeDuplicateEmployee):
			res.EmployeesSkipped++
		default:
			return res, fmt.Errorf("seed employee %s: %w", demo.code, err)
		}
	}

	ids, err := s.demoEmployeeIDs(ctx)
	if err != nil {
		return res, err
	}

	today := s.clock.Today()
	for _, demo := range demoEmployees {
		id, ok := ids[demo.code]
		if !ok {
			return res, fmt.Errorf("seed employee %s: not found after create", demo.code)
		}
		for d := 0; d < opts.DaysBack; d++ {
			status := attendance.StatusAbsent
			if rng.Float64() < opts.PresentRate {
				status = attendance.StatusPresent
			}
			req := attendance.MarkAttendanceRequest{
				EmployeeID: id,
				Date:       today.AddDate(0, 0, -d).Format(clock.DateLayout),
				Status:     status.String(),
			}
			_, err := s.attendance.Mark(ctx, req)
			switch {
			case err == nil:
				res.AttendanceCreated++
			case apperror.HasCode(err, apperror.CodeDuplicateAttendance):
				res.AttendanceSkipped++
			default:
				return res, fmt.Errorf("seed attendance %s %s: %w", demo.code, req.Date, err)
			}
		}
	}

	s.logger.Info("seed finished",
		zap.Int("employees_created", res.EmployeesCreated),
		zap.Int("employees_skipped", res.EmployeesSkipped),
		zap.Int("attendance_created", res.AttendanceCreated),
		zap.Int("attendance_skipped", res.AttendanceSkipped),
	)
	return res, nil
}

// demoEmployeeIDs maps employee codes to record ids.
func (s *Seeder) demoEmployeeIDs(ctx context.Context) (map[string]string, error) {
	all, err := s.employees.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed list employees: %w", err)
	}
	ids := make(map[string]string, len(all))
	for _, e := range all {
		ids[e.EmployeeID] = e.ID
	}
	return ids, nil
}

func emailFor(fullName string) string {
	return strings.ToLower(strings.ReplaceAll(fullName, " ", ".")) + "@company.com"
}
