package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/graphrec/pkg/graphstore"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

// ShowCmd returns the show command.
func ShowCmd(s *settings) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <kind> <id>",
		Short: "Show a stored record",
		Long: "Print the record of the given kind and id as stored on disk.\n" +
			"Kinds: node, property, relationship (rel), relationship_group (group),\n" +
			"property_key_token (key), relationship_type_token (type), label_token (label).",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execShow(o, s, args)
		},
	}
}

func execShow(o *IO, s *settings, args []string) (err error) {
	if len(args) != 2 {
		return fmt.Errorf("%w: show <kind> <id>", errUsage)
	}

	kind, id, err := parseKindID(args[0], args[1])
	if err != nil {
		return err
	}

	stores, err := s.openStores()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, stores.Close())
	}()

	rec, err := loadRecord(stores, kind, id)
	if err != nil {
		return err
	}

	o.Println(formatRecord(rec))

	return nil
}

func parseKindID(kindArg, idArg string) (record.Kind, int64, error) {
	kind, err := record.ParseKind(kindArg)
	if err != nil {
		return 0, 0, err
	}

	id, err := parseID(idArg)
	if err != nil {
		return 0, 0, err
	}

	return kind, id, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, arg)
	}

	return id, nil
}

// loadRecord reads a record of kind directly from its store.
func loadRecord(stores *graphstore.Stores, kind record.Kind, id int64) (record.Record, error) {
	switch kind {
	case record.KindNode:
		return loadAs(stores.Nodes(), id)
	case record.KindProperty:
		return loadAs(stores.Properties(), id)
	case record.KindRelationship:
		return loadAs(stores.Relationships(), id)
	case record.KindRelationshipGroup:
		return loadAs(stores.RelationshipGroups(), id)
	case record.KindPropertyKeyToken:
		return loadAs(stores.PropertyKeyTokens(), id)
	case record.KindRelationshipTypeToken:
		return loadAs(stores.RelationshipTypeTokens(), id)
	case record.KindLabelToken:
		return loadAs(stores.LabelTokens(), id)
	default:
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownKind, kind)
	}
}

func loadAs[R record.Record](store recordaccess.Store[R], id int64) (record.Record, error) {
	rec, err := store.Load(id)
	if err != nil {
		return nil, err
	}

	return rec, nil
}
