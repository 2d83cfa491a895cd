package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/triageworks/sentinel/internal/client"
	"github.com/triageworks/sentinel/internal/task"
)

var (
	app = kingpin.New("sentinel", "Correspondence triage dashboard CLI")

	addr   = app.Flag("addr", "Dashboard API address").Default("http://localhost:3100").Envar("SENTINEL_ADDR").String()
	apiKey = app.Flag("api-key", "Dashboard API key").Envar("SENTINEL_API_KEY").String()

	listCmd    = app.Command("list", "List tasks")
	listStatus = listCmd.Flag("status", "Filter by status (PENDING, APPROVED, COMPLETED)").String()

	showCmd = app.Command("show", "Show task details")
	showID  = showCmd.Arg("id", "Task ID").Required().Int()

	approveCmd = app.Command("approve", "Approve a pending task")
	approveID  = approveCmd.Arg("id", "Task ID").Required().Int()

	archiveCmd = app.Command("archive", "Mark an approved task as completed")
	archiveID  = archiveCmd.Arg("id", "Task ID").Required().Int()

	rejectCmd = app.Command("reject", "Reject and delete a task")
	rejectID  = rejectCmd.Arg("id", "Task ID").Required().Int()

	editCmd      = app.Command("edit", "Edit task fields")
	editID       = editCmd.Arg("id", "Task ID").Required().Int()
	editSummary  = editCmd.Flag("summary", "New summary").String()
	editDeadline = editCmd.Flag("deadline", "New deadline (YYYY-MM-DD or None)").String()
	editProject  = editCmd.Flag("project", "New project ID").String()
	editAssignee = editCmd.Flag("assignee", "New assignee").String()

	watcherCmd       = app.Command("watcher", "Inbox watcher control")
	watcherStatusCmd = watcherCmd.Command("status", "Show watcher status")
	watcherStartCmd  = watcherCmd.Command("start", "Start the inbox watcher")
	watcherStopCmd   = watcherCmd.Command("stop", "Stop the inbox watcher")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*addr, *apiKey)

	var err error
	switch command {
	case listCmd.FullCommand():
		err = handleList(ctx, c, *listStatus)
	case showCmd.FullCommand():
		err = handleShow(ctx, c, *showID)
	case approveCmd.FullCommand():
		err = handleTransition(ctx, c.ApproveTask, *approveID, "approved")
	case archiveCmd.FullCommand():
		err = handleTransition(ctx, c.ArchiveTask, *archiveID, "archived")
	case rejectCmd.FullCommand():
		err = handleReject(ctx, c, *rejectID)
	case editCmd.FullCommand():
		err = handleEdit(ctx, c, *editID)
	case watcherStatusCmd.FullCommand():
		err = handleWatcherStatus(ctx, c)
	case watcherStartCmd.FullCommand():
		err = handleWatcherSet(ctx, c, true)
	case watcherStopCmd.FullCommand():
		err = handleWatcherSet(ctx, c, false)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func statusColor(s task.Status) *color.Color {
	switch s {
	case task.StatusPending:
		return color.New(color.FgYellow)
	case task.StatusApproved:
		return color.New(color.FgGreen)
	case task.StatusCompleted:
		return color.New(color.FgHiBlack)
	}
	return color.New(color.Reset)
}

func handleList(ctx context.Context, c *client.Client, status string) error {
	tasks, err := c.ListTasks(ctx, status)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}
	for _, t := range tasks {
		fmt.Printf("#%-4d %s  %-10s  %-12s  %s\n",
			t.ID,
			statusColor(t.Status).Sprintf("%-9s", t.Status),
			t.ProjectID,
			t.Deadline,
			t.Summary,
		)
	}
	return nil
}

func handleShow(ctx context.Context, c *client.Client, id int) error {
	t, err := c.GetTask(ctx, id)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	bold.Printf("Task #%d\n", t.ID)
	fmt.Printf("  Status:     %s\n", statusColor(t.Status).Sprint(t.Status))
	fmt.Printf("  Summary:    %s\n", t.Summary)
	fmt.Printf("  Project:    %s\n", t.ProjectID)
	fmt.Printf("  Assignee:   %s\n", t.Assignee)
	fmt.Printf("  Deadline:   %s\n", t.Deadline)
	fmt.Printf("  Confidence: %.2f\n", t.Confidence)
	fmt.Printf("  Source:     %s\n", t.SourceFile)
	fmt.Printf("  Subject:    %s\n", t.OriginalSubject)
	fmt.Printf("  Reasoning:  %s\n", t.Reasoning)
	fmt.Printf("  Created:    %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func handleTransition(ctx context.Context, fn func(context.Context, int) (*task.Task, error), id int, verb string) error {
	t, err := fn(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Task #%d %s (%s)\n", t.ID, verb, t.Status)
	return nil
}

func handleReject(ctx context.Context, c *client.Client, id int) error {
	if err := c.RejectTask(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Task #%d rejected\n", id)
	return nil
}

func handleEdit(ctx context.Context, c *client.Client, id int) error {
	patch := &client.TaskPatch{}
	if *editSummary != "" {
		patch.Summary = editSummary
	}
	if *editDeadline != "" {
		patch.Deadline = editDeadline
	}
	if *editProject != "" {
		patch.ProjectID = editProject
	}
	if *editAssignee != "" {
		patch.Assignee = editAssignee
	}
	t, err := c.UpdateTask(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Task #%d updated: %s\n", t.ID, t.Summary)
	return nil
}

func handleWatcherStatus(ctx context.Context, c *client.Client) error {
	running, err := c.WatcherRunning(ctx)
	if err != nil {
		return err
	}
	printWatcherState(running)
	return nil
}

func handleWatcherSet(ctx context.Context, c *client.Client, running bool) error {
	state, err := c.SetWatcher(ctx, running)
	if err != nil {
		return err
	}
	printWatcherState(state)
	return nil
}

func printWatcherState(running bool) {
	if running {
		color.Green("Watcher: running")
	} else {
		color.Yellow("Watcher: stopped")
	}
}
