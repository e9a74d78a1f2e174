package application

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStudentService(t *testing.T) {
	t.Parallel()

	t.Run("students create their own profile once", func(t *testing.T) {
		t.Parallel()
		users, _, _, _ := seedDomain()
		svc := NewStudentService(newStudentRepoStub(), users, sequentialIDs("student-profile"), fixedNow)

		params := CreateStudentParams{
			Principal: studentPrincipal,
			Input:     StudentInput{UserID: "student-2", Bio: " Go developer ", Skills: []string{" go ", ""}},
		}
		student, err := svc.CreateStudent(context.Background(), params)
		if err != nil {
			t.Fatalf("CreateStudent failed: %v", err)
		}
		if student.UserID != "student-1" || student.Bio != "Go developer" || len(student.Skills) != 1 {
			t.Fatalf("unexpected profile %+v", student)
		}

		_, err = svc.CreateStudent(context.Background(), params)
		if got := UserMessage(err); !errors.Is(err, ErrAlreadyExists) || got != "user already has a student profile" {
			t.Fatalf("expected duplicate profile error, got %v (%q)", err, got)
		}
	})

	t.Run("validates bio and links", func(t *testing.T) {
		t.Parallel()
		svc := NewStudentService(newStudentRepoStub(), nil, nil, fixedNow)

		_, err := svc.CreateStudent(context.Background(), CreateStudentParams{
			Principal: studentPrincipal,
			Input: StudentInput{
				Bio:            strings.Repeat("a", 501),
				PortfolioLinks: []string{"github.com/asha"},
				ResumeURL:      "ftp://resume",
			},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"bio", "portfolioLinks", "resumeUrl"} {
			if vErr.FieldErrors[field] == "" {
				t.Fatalf("expected error on %s, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("students only edit their own profile", func(t *testing.T) {
		t.Parallel()
		repo := newStudentRepoStub(StudentProfile{ID: "profile-2", UserID: "student-2"})
		svc := NewStudentService(repo, nil, nil, fixedNow)

		_, err := svc.UpdateStudent(context.Background(), UpdateStudentParams{
			Principal: studentPrincipal,
			StudentID: "profile-2",
			Input:     StudentInput{Bio: "mine now"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}

		student, err := svc.UpdateStudent(context.Background(), UpdateStudentParams{
			Principal: adminPrincipal,
			StudentID: "profile-2",
			Input:     StudentInput{Bio: "reviewed"},
		})
		if err != nil || student.Bio != "reviewed" || student.UserID != "student-2" {
			t.Fatalf("expected admin update to succeed, got %+v (%v)", student, err)
		}
	})

	t.Run("listing and deletion are gated", func(t *testing.T) {
		t.Parallel()
		repo := newStudentRepoStub(StudentProfile{ID: "profile-1", UserID: "student-1"})
		svc := NewStudentService(repo, nil, nil, fixedNow)

		if _, err := svc.ListStudents(context.Background(), studentPrincipal); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for student listing, got %v", err)
		}
		students, err := svc.ListStudents(context.Background(), companyPrincipal)
		if err != nil || len(students) != 1 {
			t.Fatalf("expected company to list one profile, got %d (%v)", len(students), err)
		}
		if err := svc.DeleteStudent(context.Background(), companyPrincipal, "profile-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for company delete, got %v", err)
		}
		if err := svc.DeleteStudent(context.Background(), adminPrincipal, "profile-1"); err != nil {
			t.Fatalf("DeleteStudent failed: %v", err)
		}
		if err := svc.DeleteStudent(context.Background(), adminPrincipal, "profile-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
