package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/calvinalkan/graphrec/pkg/graphstore"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

// errQuit is returned by Session.Exec for exit/quit.
var errQuit = errors.New("quit")

// sessionCommands lists the shell commands for help and completion.
var sessionCommands = []struct {
	usage string
	short string
}{
	{"create <kind>", "Allocate an id and track a new record"},
	{"get <kind> <id>", "Show a record, tracking it"},
	{"labels <node> [+id|-id]...", "Add or remove node labels"},
	{"link <rel> <type> <first> <second>", "Set relationship type and endpoints"},
	{"prop <property> <key> <value>", "Set a property key and value"},
	{"token <kind> <id> <name>", "Name a token"},
	{"delete <kind> <id>", "Mark a record not in use"},
	{"changes", "List pending changes"},
	{"commit", "Write pending changes and reconcile ids"},
	{"abort", "Discard pending changes"},
	{"next-id <kind>", "Show the next id without allocating it"},
	{"help", "Show this help"},
	{"exit", "Exit (pending changes are discarded)"},
}

// sessionSet is a record access set that can list its pending commands.
type sessionSet interface {
	recordaccess.RecordAccessSet
	Commands() []recordaccess.Command
}

// Session runs shell commands against open stores. Changes accumulate in
// one record access set until commit or abort.
type Session struct {
	stores *graphstore.Stores
	sink   recordaccess.CommandSink
	out    io.Writer
	set    sessionSet
}

// NewSession returns a session over stores writing output to out. With a nil
// sink commits write to the stores; otherwise commits hand their commands to
// sink and leave the stores untouched.
func NewSession(stores *graphstore.Stores, sink recordaccess.CommandSink, out io.Writer) *Session {
	return &Session{stores: stores, sink: sink, out: out}
}

// Pending returns the number of uncommitted changes.
func (s *Session) Pending() int {
	if s.set == nil {
		return 0
	}

	return s.set.ChangeSize()
}

func (s *Session) current() sessionSet {
	if s.set != nil {
		return s.set
	}

	if s.sink != nil {
		s.set = s.stores.NewBuffered(s.sink)
	} else {
		s.set = s.stores.NewDirect()
	}

	return s.set
}

func (s *Session) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

// Exec runs one command line. Returns errQuit for exit.
// Command errors leave the pending changes untouched.
func (s *Session) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "create":
		return s.create(args)
	case "get":
		return s.get(args)
	case "labels":
		return s.labels(args)
	case "link":
		return s.link(args)
	case "prop":
		return s.prop(args)
	case "token":
		return s.token(args)
	case "delete", "del":
		return s.delete(args)
	case "changes":
		return s.changes()
	case "commit":
		return s.commit()
	case "abort":
		s.printf("discarded %d changes\n", s.Pending())
		s.set = nil

		return nil
	case "next-id":
		return s.nextID(args)
	case "help", "?":
		s.help()

		return nil
	case "exit", "quit", "q":
		return errQuit
	default:
		return fmt.Errorf("%w: %s (type 'help' for commands)", errUnknownCommand, name)
	}
}

func (s *Session) create(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: create <kind>", errUsage)
	}

	kind, err := record.ParseKind(args[0])
	if err != nil {
		return err
	}

	id, err := s.stores.IDs().Get(kind).NextID()
	if err != nil {
		return err
	}

	createIn(s.current(), kind, id)
	s.printf("created %s %d\n", kind, id)

	return nil
}

func (s *Session) get(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: get <kind> <id>", errUsage)
	}

	kind, id, err := parseKindID(args[0], args[1])
	if err != nil {
		return err
	}

	rec, err := readIn(s.current(), kind, id)
	if err != nil {
		return err
	}

	s.printf("%s\n", formatRecord(rec))

	return nil
}

func (s *Session) labels(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: labels <node> [+id|-id]...", errUsage)
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	type change struct {
		add   bool
		label uint32
	}

	changes := make([]change, 0, len(args)-1)

	for _, arg := range args[1:] {
		if len(arg) < 2 || (arg[0] != '+' && arg[0] != '-') {
			return fmt.Errorf("%w: label change %q must be +id or -id", errUsage, arg)
		}

		label, err := strconv.ParseUint(arg[1:], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid label %q", errUsage, arg)
		}

		changes = append(changes, change{add: arg[0] == '+', label: uint32(label)})
	}

	p, err := s.current().NodeRecords().GetOrLoad(id)
	if err != nil {
		return err
	}

	node := p.ForChanging()

	for _, c := range changes {
		if c.add {
			node.AddLabel(c.label)
		} else {
			node.RemoveLabel(c.label)
		}
	}

	s.printf("%s\n", formatRecord(node))

	return nil
}

func (s *Session) link(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: link <rel> <type> <first> <second>", errUsage)
	}

	nums := make([]int64, len(args))

	for i, arg := range args {
		n, err := parseID(arg)
		if err != nil {
			return err
		}

		nums[i] = n
	}

	if nums[1] < 0 || nums[1] > int64(^uint32(0)) {
		return fmt.Errorf("%w: invalid type %d", errUsage, nums[1])
	}

	p, err := s.current().RelationshipRecords().GetOrLoad(nums[0])
	if err != nil {
		return err
	}

	rel := p.ForChanging()
	rel.Link(uint32(nums[1]), nums[2], nums[3])
	s.printf("%s\n", formatRecord(rel))

	return nil
}

func (s *Session) prop(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: prop <property> <key> <value>", errUsage)
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	key, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("%w: invalid key %q", errUsage, args[1])
	}

	p, err := s.current().PropertyRecords().GetOrLoad(id)
	if err != nil {
		return err
	}

	prop := p.ForChanging()
	prop.KeyID = uint32(key)
	prop.Value = record.ParseValue(strings.Join(args[2:], " "))
	s.printf("%s\n", formatRecord(prop))

	return nil
}

func (s *Session) token(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: token <kind> <id> <name>", errUsage)
	}

	kind, id, err := parseKindID(args[0], args[1])
	if err != nil {
		return err
	}

	switch kind {
	case record.KindPropertyKeyToken, record.KindRelationshipTypeToken, record.KindLabelToken:
	default:
		return fmt.Errorf("%w: %s is not a token kind", errUsage, kind)
	}

	rec, err := changeIn(s.current(), kind, id)
	if err != nil {
		return err
	}

	tok, _ := tokenOf(rec)

	tok.Name = strings.Join(args[2:], " ")
	s.printf("%s\n", formatRecord(rec))

	return nil
}

func (s *Session) delete(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: delete <kind> <id>", errUsage)
	}

	kind, id, err := parseKindID(args[0], args[1])
	if err != nil {
		return err
	}

	rec, err := changeIn(s.current(), kind, id)
	if err != nil {
		return err
	}

	rec.SetInUse(false)
	s.printf("deleted %s %d\n", kind, id)

	return nil
}

func (s *Session) changes() error {
	if s.set == nil {
		s.printf("no changes\n")

		return nil
	}

	cmds := s.set.Commands()
	for _, c := range cmds {
		state := "changed"
		if c.Created {
			state = "created"
		}

		s.printf("%s %s\n", state, formatRecord(c.After))
	}

	s.printf("%d changes\n", len(cmds))

	return nil
}

func (s *Session) commit() error {
	if s.set == nil {
		s.printf("nothing to commit\n")

		return nil
	}

	set := s.set
	s.set = nil

	n := set.ChangeSize()

	err := set.Commit()
	if err != nil {
		if errors.Is(err, record.ErrInvalid) || s.sink != nil {
			return fmt.Errorf("commit rejected, nothing written, changes discarded: %w", err)
		}

		return fmt.Errorf("commit failed, changes discarded, records of earlier kinds may already be written: %w", err)
	}

	err = s.stores.Checkpoint()
	if err != nil {
		return err
	}

	if s.sink != nil {
		s.printf("journaled %d changes\n", n)

		return nil
	}

	s.printf("committed %d changes\n", n)

	return nil
}

func (s *Session) nextID(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: next-id <kind>", errUsage)
	}

	kind, err := record.ParseKind(args[0])
	if err != nil {
		return err
	}

	s.printf("%d\n", s.stores.IDs().Get(kind).HighID())

	return nil
}

func (s *Session) help() {
	s.printf("Commands:\n")

	for _, c := range sessionCommands {
		s.printf("  %-36s %s\n", c.usage, c.short)
	}

	s.printf("\nKinds: node, property, rel, group, key, type, label (or full names).\n")
}

func createIn(set recordaccess.RecordAccessSet, kind record.Kind, id int64) {
	switch kind {
	case record.KindNode:
		set.NodeRecords().Create(id)
	case record.KindProperty:
		set.PropertyRecords().Create(id)
	case record.KindRelationship:
		set.RelationshipRecords().Create(id)
	case record.KindRelationshipGroup:
		set.RelationshipGroupRecords().Create(id)
	case record.KindPropertyKeyToken:
		set.PropertyKeyTokenRecords().Create(id)
	case record.KindRelationshipTypeToken:
		set.RelationshipTypeTokenRecords().Create(id)
	case record.KindLabelToken:
		set.LabelTokenRecords().Create(id)
	}
}

func readIn(set recordaccess.RecordAccessSet, kind record.Kind, id int64) (record.Record, error) {
	return track(set, kind, id, false)
}

func changeIn(set recordaccess.RecordAccessSet, kind record.Kind, id int64) (record.Record, error) {
	return track(set, kind, id, true)
}

func track(set recordaccess.RecordAccessSet, kind record.Kind, id int64, forChanging bool) (record.Record, error) {
	switch kind {
	case record.KindNode:
		return proxyRecord(set.NodeRecords(), id, forChanging)
	case record.KindProperty:
		return proxyRecord(set.PropertyRecords(), id, forChanging)
	case record.KindRelationship:
		return proxyRecord(set.RelationshipRecords(), id, forChanging)
	case record.KindRelationshipGroup:
		return proxyRecord(set.RelationshipGroupRecords(), id, forChanging)
	case record.KindPropertyKeyToken:
		return proxyRecord(set.PropertyKeyTokenRecords(), id, forChanging)
	case record.KindRelationshipTypeToken:
		return proxyRecord(set.RelationshipTypeTokenRecords(), id, forChanging)
	case record.KindLabelToken:
		return proxyRecord(set.LabelTokenRecords(), id, forChanging)
	default:
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownKind, kind)
	}
}

func proxyRecord[R record.Record](tr *recordaccess.Tracker[R], id int64, forChanging bool) (record.Record, error) {
	p, err := tr.GetOrLoad(id)
	if err != nil {
		return nil, err
	}

	if forChanging {
		return p.ForChanging(), nil
	}

	return p.ForReading(), nil
}

func tokenOf(rec record.Record) (*record.Token, bool) {
	switch t := rec.(type) {
	case *record.PropertyKeyToken:
		return &t.Token, true
	case *record.RelationshipTypeToken:
		return &t.Token, true
	case *record.LabelToken:
		return &t.Token, true
	default:
		return nil, false
	}
}
