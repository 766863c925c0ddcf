// Package cli is the interactive terminal delivery: a line-based command
// loop over the planner usecases.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"studybuddy/internal/delivery"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

type commandLoop struct {
	logger        *slog.Logger
	in            io.Reader
	out           io.Writer
	session       usecase.SessionUsecase
	users         usecase.UserUsecase
	tasks         usecase.TaskUsecase
	courses       usecase.CourseUsecase
	events        usecase.EventUsecase
	notifications usecase.NotificationUsecase
	reminders     usecase.ReminderUsecase
	reconcile     usecase.ReconcileUsecase
}

// ServerParams holds dependencies for the command loop.
type ServerParams struct {
	fx.In

	Logger        *slog.Logger
	Session       usecase.SessionUsecase
	Users         usecase.UserUsecase
	Tasks         usecase.TaskUsecase
	Courses       usecase.CourseUsecase
	Events        usecase.EventUsecase
	Notifications usecase.NotificationUsecase
	Reminders     usecase.ReminderUsecase
	Reconcile     usecase.ReconcileUsecase
}

// NewServer creates the interactive command loop over stdin/stdout.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	return &commandLoop{
		logger:        params.Logger,
		in:            os.Stdin,
		out:           os.Stdout,
		session:       params.Session,
		users:         params.Users,
		tasks:         params.Tasks,
		courses:       params.Courses,
		events:        params.Events,
		notifications: params.Notifications,
		reminders:     params.Reminders,
		reconcile:     params.Reconcile,
	}, nil
}

// Serve reads commands line by line until EOF or context cancellation.
func (s *commandLoop) Serve(ctx context.Context) error {
	session := s.session.Current()
	fmt.Fprintf(s.out, "studybuddy (%s), type 'help' for commands\n", session.State)

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if cmd == "exit" || cmd == "quit" {
			return nil
		}

		if err := s.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *commandLoop) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printHelp()
		return nil
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		user, err := s.users.SignIn(ctx, &usecase.SignInInput{Email: args[0], Password: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "signed in as %s\n", user.Email)
		return nil
	case "register":
		if len(args) != 3 {
			return fmt.Errorf("usage: register <name> <email> <password>")
		}
		user, err := s.users.Register(ctx, &usecase.RegisterInput{Name: args[0], Email: args[1], Password: args[2]})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "registered %s\n", user.Email)
		return nil
	case "logout":
		s.reminders.CancelAll(ctx)
		return s.session.Logout(ctx)
	case "whoami":
		return s.printJSON(s.session.Current())
	case "passwd":
		if len(args) != 2 {
			return fmt.Errorf("usage: passwd <old> <new>")
		}
		return s.users.ChangePassword(ctx, &usecase.ChangePasswordInput{OldPassword: args[0], NewPassword: args[1]})
	case "tasks":
		tasks, err := s.tasks.List(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(tasks)
	case "add-task":
		if len(args) < 3 {
			return fmt.Errorf("usage: add-task <title> <courseId> <dueDate> [dueTime]")
		}
		input := &usecase.CreateTaskInput{Title: args[0], CourseID: args[1], DueDate: args[2], HasReminder: true}
		if len(args) > 3 {
			input.DueTime = args[3]
		}
		task, err := s.tasks.Create(ctx, input)
		if err != nil {
			return err
		}
		return s.printJSON(task)
	case "rm-task":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm-task <id>")
		}
		return s.tasks.Delete(ctx, args[0])
	case "courses":
		courses, err := s.courses.List(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(courses)
	case "add-course":
		if len(args) != 2 {
			return fmt.Errorf("usage: add-course <name> <color>")
		}
		course, err := s.courses.Create(ctx, &usecase.CreateCourseInput{Name: args[0], Color: args[1]})
		if err != nil {
			return err
		}
		return s.printJSON(course)
	case "events":
		events, err := s.events.List(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(events)
	case "add-event":
		if len(args) < 4 {
			return fmt.Errorf("usage: add-event <title> <courseId> <date> <startTime> [type]")
		}
		input := &usecase.CreateEventInput{Title: args[0], CourseID: args[1], Date: args[2], StartTime: args[3], Type: "other"}
		if len(args) > 4 {
			input.Type = args[4]
		}
		event, err := s.events.Create(ctx, input)
		if err != nil {
			return err
		}
		return s.printJSON(event)
	case "notifications":
		notifications, err := s.notifications.List(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(notifications)
	case "read":
		if len(args) != 1 {
			return fmt.Errorf("usage: read <notificationId>")
		}
		return s.notifications.MarkRead(ctx, args[0])
	case "pending":
		pending, err := s.reminders.Pending(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(pending)
	case "reconcile":
		return s.reconcile.RunOnce(ctx)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (s *commandLoop) printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(encoded))
	return nil
}

func (s *commandLoop) printHelp() {
	fmt.Fprint(s.out, `commands:
  login <email> <password>       sign in
  register <name> <email> <pw>   create an account
  logout                         sign out and drop reminders
  whoami                         show the current session
  passwd <old> <new>             change password
  tasks                          list tasks
  add-task <title> <courseId> <dueDate> [dueTime]
  rm-task <id>                   delete a task
  courses | add-course <name> <color>
  events | add-event <title> <courseId> <date> <startTime> [type]
  notifications | read <id>      server notifications
  pending                        pending local reminders
  reconcile                      run a reconciliation pass now
  exit
`)
}
