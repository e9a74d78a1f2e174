package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReportService_CreateReport(t *testing.T) {
	t.Parallel()

	t.Run("computes counts and defaults dates from the drive", func(t *testing.T) {
		t.Parallel()
		_, _, drives, _ := seedDomain()
		drives.stats = DriveStats{Participants: 4, Interviews: 3, OffersMade: 2, StudentsPlaced: 1}
		svc := NewReportService(newReportRepoStub(), drives, sequentialIDs("report"), fixedNow)

		report, err := svc.CreateReport(context.Background(), CreateReportParams{
			Principal: adminPrincipal,
			Input:     ReportInput{PlacementDriveID: "drive-1", Summary: " good turnout "},
		})
		if err != nil {
			t.Fatalf("CreateReport failed: %v", err)
		}
		if report.ParticipantCount != 4 || report.InterviewCount != 3 || report.OffersMade != 2 || report.StudentsPlaced != 1 {
			t.Fatalf("unexpected counts %+v", report)
		}
		if !report.StartDate.Equal(testNow) || report.EndDate == nil || !report.EndDate.Equal(testNow.AddDate(0, 0, 7)) {
			t.Fatalf("expected drive dates, got %v - %v", report.StartDate, report.EndDate)
		}
		if report.Summary != "good turnout" {
			t.Fatalf("expected trimmed summary, got %q", report.Summary)
		}
	})

	t.Run("one report per drive", func(t *testing.T) {
		t.Parallel()
		_, _, drives, _ := seedDomain()
		svc := NewReportService(newReportRepoStub(Report{ID: "report-0", PlacementDriveID: "drive-1"}), drives, sequentialIDs("report"), fixedNow)

		_, err := svc.CreateReport(context.Background(), CreateReportParams{Principal: adminPrincipal, Input: ReportInput{PlacementDriveID: "drive-1"}})
		if !errors.Is(err, ErrAlreadyExists) || UserMessage(err) != "placement drive already has a report" {
			t.Fatalf("expected duplicate report error, got %v", err)
		}
	})

	t.Run("rejects inverted dates and unknown drives", func(t *testing.T) {
		t.Parallel()
		_, _, drives, _ := seedDomain()
		svc := NewReportService(newReportRepoStub(), drives, nil, fixedNow)

		end := testNow.Add(-24 * time.Hour)
		_, err := svc.CreateReport(context.Background(), CreateReportParams{Principal: adminPrincipal, Input: ReportInput{PlacementDriveID: "drive-1", EndDate: &end}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["endDate"] == "" {
			t.Fatalf("expected endDate error, got %v", err)
		}

		_, err = svc.CreateReport(context.Background(), CreateReportParams{Principal: adminPrincipal, Input: ReportInput{PlacementDriveID: "drive-x"}})
		if !errors.As(err, &vErr) || vErr.FieldErrors["placementDrive"] != "placement drive does not exist" {
			t.Fatalf("expected placementDrive error, got %v", err)
		}
	})

	t.Run("admin only", func(t *testing.T) {
		t.Parallel()
		_, _, drives, _ := seedDomain()
		svc := NewReportService(newReportRepoStub(), drives, nil, fixedNow)

		_, err := svc.CreateReport(context.Background(), CreateReportParams{Principal: companyPrincipal, Input: ReportInput{PlacementDriveID: "drive-1"}})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestReportService_UpdateAndExport(t *testing.T) {
	t.Parallel()

	_, _, drives, _ := seedDomain()
	drives.stats = DriveStats{Participants: 9}
	repo := newReportRepoStub(Report{ID: "report-1", PlacementDriveID: "drive-1", ParticipantCount: 1, StartDate: testNow})
	svc := NewReportService(repo, drives, nil, fixedNow)

	report, err := svc.UpdateReport(context.Background(), UpdateReportParams{
		Principal: adminPrincipal,
		ReportID:  "report-1",
		Input:     ReportInput{Summary: "refreshed"},
	})
	if err != nil {
		t.Fatalf("UpdateReport failed: %v", err)
	}
	if report.ParticipantCount != 9 || report.PlacementDriveID != "drive-1" || report.Summary != "refreshed" {
		t.Fatalf("expected recomputed report, got %+v", report)
	}

	exports, err := svc.ExportReports(context.Background(), adminPrincipal, "")
	if err != nil {
		t.Fatalf("ExportReports failed: %v", err)
	}
	if len(exports) != 1 || exports[0].Drive.ID != "drive-1" {
		t.Fatalf("unexpected exports %+v", exports)
	}

	if _, err := svc.ExportReports(context.Background(), adminPrincipal, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ExportReports(context.Background(), studentPrincipal, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
