package recordaccess

import "github.com/calvinalkan/graphrec/pkg/record"

// Loader creates blank records and copies loaded ones for one kind.
//
// Implementations do no I/O.
type Loader[R record.Record] interface {
	// Blank returns a new in-use record with the given id.
	Blank(id int64) R

	// Copy returns a value sharing no memory with rec.
	Copy(rec R) R
}

// LoaderFuncs adapts a pair of functions to a [Loader].
type LoaderFuncs[R record.Record] struct {
	BlankFunc func(id int64) R
	CopyFunc  func(rec R) R
}

// Blank calls BlankFunc.
func (l LoaderFuncs[R]) Blank(id int64) R { return l.BlankFunc(id) }

// Copy calls CopyFunc.
func (l LoaderFuncs[R]) Copy(rec R) R { return l.CopyFunc(rec) }

// Loaders for the seven record kinds.
var (
	NodeLoader Loader[*record.Node] = LoaderFuncs[*record.Node]{
		BlankFunc: record.NewNode,
		CopyFunc:  (*record.Node).Clone,
	}
	PropertyLoader Loader[*record.Property] = LoaderFuncs[*record.Property]{
		BlankFunc: record.NewProperty,
		CopyFunc:  (*record.Property).Clone,
	}
	RelationshipLoader Loader[*record.Relationship] = LoaderFuncs[*record.Relationship]{
		BlankFunc: record.NewRelationship,
		CopyFunc:  (*record.Relationship).Clone,
	}
	RelationshipGroupLoader Loader[*record.RelationshipGroup] = LoaderFuncs[*record.RelationshipGroup]{
		BlankFunc: record.NewRelationshipGroup,
		CopyFunc:  (*record.RelationshipGroup).Clone,
	}
	PropertyKeyTokenLoader Loader[*record.PropertyKeyToken] = LoaderFuncs[*record.PropertyKeyToken]{
		BlankFunc: record.NewPropertyKeyToken,
		CopyFunc:  (*record.PropertyKeyToken).Clone,
	}
	RelationshipTypeTokenLoader Loader[*record.RelationshipTypeToken] = LoaderFuncs[*record.RelationshipTypeToken]{
		BlankFunc: record.NewRelationshipTypeToken,
		CopyFunc:  (*record.RelationshipTypeToken).Clone,
	}
	LabelTokenLoader Loader[*record.LabelToken] = LoaderFuncs[*record.LabelToken]{
		BlankFunc: record.NewLabelToken,
		CopyFunc:  (*record.LabelToken).Clone,
	}
)
