package sheet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	apperrors "github.com/louisbranch/charsheet/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/charsheet/internal/platform/i18n/catalog"
	"github.com/louisbranch/charsheet/internal/platform/timeouts"
	"github.com/louisbranch/charsheet/internal/services/sheet/app"
	"github.com/louisbranch/charsheet/internal/services/sheet/sheetsync"
	"golang.org/x/text/message"
)

// statusBuffer holds status events while a request settles. One request
// emits at most two.
const statusBuffer = 16

type console struct {
	engine  *app.Engine
	out     io.Writer
	printer *message.Printer
	locale  string
	saving  bool
}

func newConsole(engine *app.Engine, out io.Writer, locale string) *console {
	return &console{
		engine:  engine,
		out:     out,
		printer: i18ncatalog.Default().Printer(locale),
		locale:  locale,
	}
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	statuses := make(chan sheetsync.Status, statusBuffer)
	unsubscribe := c.engine.SubscribeStatus(func(s sheetsync.Status) {
		select {
		case statuses <- s:
		default:
		}
	})
	defer unsubscribe()
	defer c.drain()

	done := make(chan struct{})
	defer close(done)
	lines := scanLines(in, done)

	c.say(c.out, "core.app.title")
	c.request(ctx, statuses, c.engine.Start)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.execute(ctx, statuses, line); quit {
				return nil
			}
		}
	}
}

// request issues a sync request and awaits it. A rejected request prints
// its error and leaves the status alone.
func (c *console) request(ctx context.Context, statuses <-chan sheetsync.Status, issue func(context.Context) (<-chan sheetsync.Status, error)) {
	settled, err := issue(ctx)
	if err != nil {
		c.saving = false
		fmt.Fprintln(c.out, apperrors.UserMessage(err, c.locale))
		return
	}
	c.await(ctx, statuses, settled)
}

// drain gives a request still in flight at exit up to timeouts.Shutdown to
// settle.
func (c *console) drain() {
	done := make(chan struct{})
	go func() {
		c.engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeouts.Shutdown):
	}
}

// await renders status events until settled yields. Commands are not read
// while a request is in flight, so a load never races a local edit.
func (c *console) await(ctx context.Context, statuses <-chan sheetsync.Status, settled <-chan sheetsync.Status) {
	for {
		select {
		case <-ctx.Done():
			return
		case status := <-statuses:
			c.renderStatus(status)
		case <-settled:
			for {
				select {
				case status := <-statuses:
					c.renderStatus(status)
				default:
					return
				}
			}
		}
	}
}

func (c *console) execute(ctx context.Context, statuses <-chan sheetsync.Status, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	command, args := strings.ToLower(fields[0]), fields[1:]
	switch command {
	case "quit", "exit":
		return true
	case "help":
		c.say(c.out, "sheet.help")
	case "show":
		c.renderSheet()
	case "classes":
		c.renderClasses(c.engine.Snapshot())
	case "attr":
		c.adjust(command, args, c.attributeName, c.engine.Adjust, "sheet.attribute.unknown")
	case "skill":
		c.adjust(command, args, c.skillName, c.engine.Allocate, "sheet.skill.unknown")
	case "class":
		c.renderClassDetail(strings.Join(args, " "))
	case "save":
		c.saving = true
		c.request(ctx, statuses, c.engine.Save)
	case "load":
		c.request(ctx, statuses, c.engine.Load)
	case "status":
		c.renderStatusLine(c.engine.Status())
	default:
		c.say(c.out, "sheet.unknown_command", fields[0])
	}
	return false
}

func (c *console) adjust(command string, args []string, resolve func(string) (string, bool), apply func(string, int), unknownKey string) {
	if len(args) < 2 {
		c.say(c.out, "sheet.usage.adjust", command)
		return
	}
	delta, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		c.say(c.out, "sheet.usage.adjust", command)
		return
	}
	input := strings.Join(args[:len(args)-1], " ")
	name, ok := resolve(input)
	if !ok {
		c.say(c.out, unknownKey, input)
		return
	}
	apply(name, delta)
	c.renderSheet()
}

func (c *console) attributeName(input string) (string, bool) {
	for _, attr := range c.engine.Sheet().Attributes {
		if strings.EqualFold(attr.Name, input) {
			return attr.Name, true
		}
	}
	return "", false
}

func (c *console) skillName(input string) (string, bool) {
	for _, skill := range c.engine.Sheet().Skills {
		if strings.EqualFold(skill.Name, input) {
			return skill.Name, true
		}
	}
	return "", false
}

func (c *console) renderStatus(status sheetsync.Status) {
	switch status.State {
	case sheetsync.StateLoading:
		c.say(c.out, "core.status.loading")
	case sheetsync.StateReady:
		if c.saving {
			c.say(c.out, "sheet.saved")
		}
		c.saving = false
		c.renderSheet()
	case sheetsync.StateError:
		c.saving = false
		fmt.Fprintln(c.out, status.Message)
	}
}

func (c *console) renderStatusLine(status sheetsync.Status) {
	c.say(c.out, "sheet.status", c.printer.Sprintf("sheet.status."+status.State.String()))
	if status.State == sheetsync.StateError {
		fmt.Fprintln(c.out, status.Message)
	}
}

func (c *console) renderSheet() {
	snap := c.engine.Snapshot()
	c.renderAttributes(snap)
	c.renderSkills(snap)
	c.renderClasses(snap)
}

func (c *console) renderAttributes(snap app.Snapshot) {
	fmt.Fprintln(c.out)
	c.say(c.out, "sheet.attributes.heading")
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	c.say(tw, "sheet.attributes.columns")
	for _, row := range snap.Attributes {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Name, row.Value, signed(row.Modifier))
	}
	_ = tw.Flush()
}

func (c *console) renderSkills(snap app.Snapshot) {
	fmt.Fprintln(c.out)
	c.say(c.out, "sheet.skills.heading")
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	c.say(tw, "sheet.skills.columns")
	for _, row := range snap.Skills {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\n",
			row.Name, row.PointsSpent, row.PointsAvailable, row.Attribute, signed(row.Modifier), row.Total)
	}
	_ = tw.Flush()
}

func (c *console) renderClasses(snap app.Snapshot) {
	fmt.Fprintln(c.out)
	c.say(c.out, "sheet.classes.heading")
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, class := range snap.Classes {
		key := "sheet.classes.ineligible"
		if class.Eligible {
			key = "sheet.classes.eligible"
		}
		fmt.Fprintf(tw, "%s\t%s\n", class.Name, c.printer.Sprintf(key))
	}
	_ = tw.Flush()
}

func (c *console) renderClassDetail(name string) {
	detail, ok := c.engine.ClassDetail(name)
	if !ok {
		c.say(c.out, "sheet.class.unknown", name)
		return
	}
	c.say(c.out, "sheet.class.requirements", detail.Name)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, req := range detail.Requirements {
		c.say(tw, "sheet.class.requirement_row", req.Attribute, req.Minimum)
	}
	_ = tw.Flush()
	key := "sheet.classes.ineligible"
	if detail.Eligible {
		key = "sheet.classes.eligible"
	}
	c.say(c.out, key)
}

// say prints a catalog message followed by a newline.
func (c *console) say(w io.Writer, key string, args ...any) {
	c.printer.Fprintf(w, key, args...)
	fmt.Fprintln(w)
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func scanLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}
