package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	apiclient "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/api/client"
)

var buildVersion = "dev"

const requestTimeout = 15 * time.Second

var errNotLoggedIn = errors.New("please login first using 'taskctl login'")

// cli carries the output stream and config location so commands can run
// against a temporary home in tests.
type cli struct {
	out        io.Writer
	configPath func() (string, error)
	readSecret func() (string, error)
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	app := cli{out: os.Stdout, configPath: defaultConfigPath, readSecret: promptPassword}
	if err := app.run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (c cli) run(cmd string, args []string) error {
	switch cmd {
	case "register":
		return c.commandRegister(args)
	case "login":
		return c.commandLogin(args)
	case "logout":
		return c.commandLogout()
	case "whoami":
		return c.commandWhoami()
	case "task":
		return c.commandTask(args)
	case "profile":
		return c.commandProfile(args)
	case "version", "--version", "-v":
		fmt.Fprintln(c.out, strings.TrimSpace(buildVersion))
		return nil
	case "help", "-h", "--help":
		printUsage(c.out)
		return nil
	default:
		printUsage(c.out)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}

// credentials parses --email/--password and prompts for a missing password.
func (c cli) credentials(name string, args []string) (email, password, api string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	emailFlag := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (supply to avoid prompt)")
	apiFlag := fs.String("api", "", "Gateway base URL (default "+defaultAPIBaseURL+")")
	if err := fs.Parse(args); err != nil {
		return "", "", "", err
	}
	if strings.TrimSpace(*emailFlag) == "" {
		return "", "", "", errors.New("--email is required")
	}
	secret := *passwordFlag
	if secret == "" {
		secret, err = c.readSecret()
		if err != nil {
			return "", "", "", err
		}
	}
	return strings.TrimSpace(*emailFlag), secret, strings.TrimSpace(*apiFlag), nil
}

func (c cli) commandRegister(args []string) error {
	email, password, api, err := c.credentials("register", args)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if api != "" {
		cfg.APIBaseURL = api
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	user, err := client.Register(ctx, email, password)
	if err != nil {
		return err
	}
	if api != "" {
		if err := c.saveConfig(cfg); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "registered: %d (%s)\n", user.ID, user.Email)
	return nil
}

func (c cli) commandLogin(args []string) error {
	email, password, api, err := c.credentials("login", args)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if api != "" {
		cfg.APIBaseURL = api
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	cfg.AccessToken = resp.AccessToken
	if resp.ExpiresIn > 0 {
		cfg.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}
	if err := c.saveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "login successful")
	return nil
}

func (c cli) commandLogout() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	cfg.AccessToken = ""
	cfg.ExpiresAt = time.Time{}
	if err := c.saveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged out")
	return nil
}

func (c cli) commandWhoami() error {
	client, token, err := c.session()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	user, err := client.Me(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d\t%s\tactive=%t\n", user.ID, user.Email, user.IsActive)
	return nil
}

// session returns a client for the configured gateway and the stored token.
func (c cli) session() (*apiclient.Client, string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, "", err
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, "", errNotLoggedIn
	}
	if !cfg.ExpiresAt.IsZero() && time.Now().After(cfg.ExpiresAt) {
		return nil, "", errors.New("session expired, please login again")
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}

func (c cli) commandTask(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: taskctl task [list|show|create|update|delete]")
	}
	switch args[0] {
	case "list":
		return c.taskList()
	case "show":
		return c.taskShow(args[1:])
	case "create":
		return c.taskCreate(args[1:])
	case "update":
		return c.taskUpdate(args[1:])
	case "delete":
		return c.taskDelete(args[1:])
	default:
		return fmt.Errorf("unknown task command: %s", args[0])
	}
}

func (c cli) taskList() error {
	client, token, err := c.session()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	tasks, err := client.ListTasks(ctx, token)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		c.printTask(t)
	}
	return nil
}

func (c cli) printTask(t apiclient.Task) {
	description := ""
	if t.Description != nil {
		description = *t.Description
	}
	fmt.Fprintf(c.out, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, description, t.CreatedAt.Format(time.RFC3339))
}

func taskIDFlag(fs *flag.FlagSet) *string {
	return fs.String("id", "", "Task identifier")
}

func requireTaskID(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, errors.New("--id is required")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func (c cli) taskShow(args []string) error {
	fs := flag.NewFlagSet("task show", flag.ContinueOnError)
	fs.SetOutput(c.out)
	rawID := taskIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireTaskID(*rawID)
	if err != nil {
		return err
	}
	client, token, err := c.session()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	task, err := client.GetTask(ctx, token, id)
	if err != nil {
		return err
	}
	c.printTask(task)
	return nil
}

func (c cli) taskCreate(args []string) error {
	fs := flag.NewFlagSet("task create", flag.ContinueOnError)
	fs.SetOutput(c.out)
	title := fs.String("title", "", "Task title")
	description := fs.String("description", "", "Optional description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		return errors.New("--title is required")
	}
	client, token, err := c.session()
	if err != nil {
		return err
	}
	input := apiclient.CreateTaskInput{Title: *title}
	if *description != "" {
		input.Description = description
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	task, err := client.CreateTask(ctx, token, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "task created: %d (%s)\n", task.ID, task.Title)
	return nil
}

func (c cli) taskUpdate(args []string) error {
	fs := flag.NewFlagSet("task update", flag.ContinueOnError)
	fs.SetOutput(c.out)
	rawID := taskIDFlag(fs)
	title := fs.String("title", "", "New title")
	description := fs.String("description", "", "New description")
	status := fs.String("status", "", "New status (pending|completed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireTaskID(*rawID)
	if err != nil {
		return err
	}

	// Only flags given on the command line are sent.
	var input apiclient.UpdateTaskInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			input.Title = title
		case "description":
			input.Description = description
		case "status":
			input.Status = status
		}
	})
	if input.Title == nil && input.Description == nil && input.Status == nil {
		return errors.New("nothing to update: pass --title, --description or --status")
	}

	client, token, err := c.session()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	task, err := client.UpdateTask(ctx, token, id, input)
	if err != nil {
		return err
	}
	c.printTask(task)
	return nil
}

func (c cli) taskDelete(args []string) error {
	fs := flag.NewFlagSet("task delete", flag.ContinueOnError)
	fs.SetOutput(c.out)
	rawID := taskIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireTaskID(*rawID)
	if err != nil {
		return err
	}
	client, token, err := c.session()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := client.DeleteTask(ctx, token, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "task deleted")
	return nil
}

func (c cli) commandProfile(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: taskctl profile [show|create|update|delete]")
	}
	client, token, err := c.session()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch args[0] {
	case "show":
		profile, err := client.GetProfile(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d\t%s\t%s\n", profile.ID, profile.FullName, profile.CreatedAt.Format(time.RFC3339))
		return nil
	case "create", "update":
		fs := flag.NewFlagSet("profile "+args[0], flag.ContinueOnError)
		fs.SetOutput(c.out)
		name := fs.String("name", "", "Full name")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" {
			return errors.New("--name is required")
		}
		var profile apiclient.Profile
		if args[0] == "create" {
			profile, err = client.CreateProfile(ctx, token, *name)
		} else {
			profile, err = client.UpdateProfile(ctx, token, *name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "profile saved: %s\n", profile.FullName)
		return nil
	case "delete":
		if err := client.DeleteProfile(ctx, token); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "profile deleted")
		return nil
	default:
		return fmt.Errorf("unknown profile command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "taskctl %s\n\n", buildVersion)
	fmt.Fprint(w, `Usage:
	taskctl register --email user@example.com [--password secret] [--api `+defaultAPIBaseURL+`]
	taskctl login --email user@example.com [--password secret] [--api `+defaultAPIBaseURL+`]
	taskctl logout
	taskctl whoami
	taskctl task list
	taskctl task show --id <task-id>
	taskctl task create --title <title> [--description text]
	taskctl task update --id <task-id> [--title t] [--description d] [--status pending|completed]
	taskctl task delete --id <task-id>
	taskctl profile show
	taskctl profile create --name <full name>
	taskctl profile update --name <full name>
	taskctl profile delete
	taskctl version
`)
}
