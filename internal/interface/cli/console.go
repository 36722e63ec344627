package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	domuser "example.com/user-admin/internal/domain/user"
	"example.com/user-admin/internal/usecase/admin"
	"example.com/user-admin/internal/usecase/listing"
	"example.com/user-admin/internal/usecase/preference"
	"example.com/user-admin/internal/usecase/query"
)

var errUsage = errors.New("usage")

// Console is the administrative front end: it owns the view state, renders
// pages of the user list and forwards edits to the action layer.
type Console struct {
	actions  *admin.Service
	users    *query.UserList
	prefs    *preference.Service
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	progress bool
	logger   *slog.Logger
}

type Dependencies struct {
	Actions     *admin.Service
	UserList    *query.UserList
	Preferences *preference.Service
	In          io.Reader
	Out         io.Writer
	ErrOut      io.Writer
	// ShowProgress prints loading and submitting lines on ErrOut.
	ShowProgress bool
	Logger       *slog.Logger
}

func NewConsole(deps Dependencies) *Console {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		actions:  deps.Actions,
		users:    deps.UserList,
		prefs:    deps.Preferences,
		in:       bufio.NewReader(deps.In),
		out:      deps.Out,
		errOut:   deps.ErrOut,
		progress: deps.ShowProgress,
		logger:   logger,
	}
}

// Run executes one command and returns the process exit code.
func (c *Console) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		c.usage()
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "list", "ls":
		err = c.list(ctx, rest)
	case "roles":
		err = c.roles(ctx)
	case "get", "show":
		err = c.get(ctx, rest)
	case "create", "add":
		err = c.create(ctx, rest)
	case "update", "edit":
		err = c.update(ctx, rest)
	case "delete", "rm":
		err = c.delete(ctx, rest)
	case "help", "-h", "--help":
		c.usage()
		return 0
	default:
		fmt.Fprintf(c.errOut, "unknown command: %s\n", cmd)
		c.usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	}
	fmt.Fprintf(c.errOut, "error: %v\n", err)
	return 1
}

func (c *Console) usage() {
	fmt.Fprint(c.errOut, `usage: useradmin <command> [flags]

commands:
  list   [-search text] [-role name] [-sort field] [-page n] [-refresh]
  roles
  get    <id>
  create [-name n] [-email e] [-role Admin|User]
  update <id> [-name n] [-email e] [-role Admin|User]
  delete <id>
`)
}

func (c *Console) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *Console) busy(label string) func() {
	if !c.progress {
		return func() {}
	}
	fmt.Fprintf(c.errOut, "%s...", label)
	return func() { fmt.Fprint(c.errOut, "\r\033[K") }
}

func (c *Console) list(ctx context.Context, args []string) error {
	fs := c.newFlagSet("list")
	search := fs.String("search", "", "Case-insensitive match on name, email or role")
	role := fs.String("role", listing.AllRoles, "Only show this role")
	sortField := fs.String("sort", "", "Click a column: name, email, role or id")
	page := fs.Int("page", 1, "Page number")
	refresh := fs.Bool("refresh", false, "Discard the cached list first")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	state, err := c.prefs.Load(ctx, listing.DefaultViewState())
	if err != nil {
		c.logger.Warn("sort preference not restored", "error", err)
	}
	if *sortField != "" {
		state = state.ToggleSort(*sortField)
		if err := c.prefs.Save(ctx, state); err != nil {
			c.logger.Warn("sort preference not saved", "error", err)
		}
	}
	state = state.WithSearch(*search).WithRoleFilter(*role).WithPage(*page)

	if *refresh {
		if err := c.users.Invalidate(ctx); err != nil {
			c.logger.Warn("cache invalidation failed", "error", err)
		}
	}

	done := c.busy("Loading")
	users, err := c.users.Get(ctx)
	done()
	if err != nil {
		c.logger.Error("user list unavailable", "error", err)
		return errors.New("could not load users")
	}

	res := listing.Derive(users, state)
	if len(res.Users) == 0 && res.Total > 0 {
		clamped := state.Clamp(res.TotalPages)
		fmt.Fprintf(c.errOut, "page %d is out of range, showing page %d\n", state.Page, clamped.Page)
		state = clamped
		res = listing.Derive(users, state)
	}
	renderRoles(c.out, res.Roles, state.RoleFilter)
	renderTable(c.out, res.Users, state)
	renderFooter(c.out, res.Page, state.Page)
	return nil
}

func (c *Console) roles(ctx context.Context) error {
	done := c.busy("Loading")
	users, err := c.users.Get(ctx)
	done()
	if err != nil {
		return errors.New("could not load users")
	}
	for _, r := range listing.Roles(users) {
		fmt.Fprintln(c.out, r)
	}
	return nil
}

func (c *Console) get(ctx context.Context, args []string) error {
	id, _, err := c.parseIDArgs("get", args)
	if err != nil {
		return err
	}
	done := c.busy("Loading")
	u, err := c.actions.GetUser(ctx, id)
	done()
	if err != nil {
		return err
	}
	renderDetails(c.out, u)
	return nil
}

func (c *Console) create(ctx context.Context, args []string) error {
	fs := c.newFlagSet("create")
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email address, must be unused")
	role := fs.String("role", "", "Admin or User")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	values := map[string]string{"name": *name, "email": *email, "role": *role}
	interactive := false
	for _, f := range UserFormFields {
		if values[f.Key()] != "" {
			continue
		}
		v, err := c.prompt(f, "")
		if err != nil {
			return err
		}
		values[f.Key()] = v
		interactive = true
	}

	for {
		candidate := domuser.Candidate{
			Name:  values["name"],
			Email: values["email"],
			Role:  domuser.Role(values["role"]),
		}
		done := c.busy("Submitting")
		u, err := c.actions.CreateUser(ctx, candidate)
		done()
		err = c.users.Mutated(ctx, err)
		if err == nil {
			fmt.Fprintf(c.out, "created user %d\n", u.ID)
			renderDetails(c.out, u)
			return nil
		}

		key := "email"
		switch {
		case errors.Is(err, domuser.ErrInvalidRole):
			key = "role"
		case errors.Is(err, domuser.ErrNameRequired):
			key = "name"
		}
		if !interactive {
			return fmt.Errorf("%s: %w", key, err)
		}
		v, perr := c.prompt(fieldByKey(key), err.Error())
		if perr != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		values[key] = v
	}
}

func (c *Console) update(ctx context.Context, args []string) error {
	fs := c.newFlagSet("update")
	name := fs.String("name", "", "New name")
	email := fs.String("email", "", "New email address")
	role := fs.String("role", "", "New role: Admin or User")
	id, rest, err := c.parseIDArgs("update", args)
	if err != nil {
		return err
	}
	if err := fs.Parse(rest); err != nil {
		return errUsage
	}

	var patch domuser.Patch
	if *name != "" {
		patch.Name = name
	}
	if *email != "" {
		patch.Email = email
	}
	if *role != "" {
		r, err := domuser.ParseRole(*role)
		if err != nil {
			return err
		}
		patch.Role = &r
	}
	if patch.IsEmpty() {
		fmt.Fprintln(c.errOut, "nothing to update: pass -name, -email or -role")
		return errUsage
	}

	done := c.busy("Submitting")
	var u domuser.User
	if patch.Name != nil && patch.Email != nil && patch.Role != nil {
		u, err = c.actions.UpdateUser(ctx, patch.Apply(domuser.User{ID: id}))
	} else {
		u, err = c.actions.PatchUser(ctx, id, patch)
	}
	done()
	if err := c.users.Mutated(ctx, err); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "updated user %d\n", u.ID)
	renderDetails(c.out, u)
	return nil
}

func (c *Console) delete(ctx context.Context, args []string) error {
	id, _, err := c.parseIDArgs("delete", args)
	if err != nil {
		return err
	}
	done := c.busy("Submitting")
	ack, err := c.actions.DeleteUser(ctx, id)
	done()
	if err := c.users.Mutated(ctx, err); err != nil {
		return err
	}
	payload, _ := json.Marshal(ack)
	fmt.Fprintf(c.out, "deleted user %d %s\n", id, payload)
	return nil
}

// parseIDArgs takes the user id from the first argument and returns the rest.
func (c *Console) parseIDArgs(cmd string, args []string) (int64, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(c.errOut, "usage: useradmin %s <id>\n", cmd)
		return 0, nil, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid id %q", args[0])
	}
	return id, args[1:], nil
}

// prompt asks for f until the input parses. errMsg is shown before the first ask.
func (c *Console) prompt(f Field, errMsg string) (string, error) {
	for {
		RenderField(c.errOut, f, errMsg)
		line, err := c.in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", fmt.Errorf("read %s: %w", f.Key(), err)
		}
		v, perr := ParseField(f, line)
		if perr == nil {
			return v, nil
		}
		if err != nil {
			return "", perr
		}
		errMsg = perr.Error()
	}
}
