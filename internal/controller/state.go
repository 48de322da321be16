package controller

import (
	"fmt"

	"github.com/desertthunder/cinefav/internal/models"
)

// ModalKind identifies which dialog is open.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalForm
	ModalDelete
	ModalView
)

func (k ModalKind) String() string {
	switch k {
	case ModalNone:
		return "none"
	case ModalForm:
		return "form"
	case ModalDelete:
		return "delete"
	case ModalView:
		return "view"
	default:
		return fmt.Sprintf("ModalKind(%d)", int(k))
	}
}

// FormMode distinguishes creating a record from editing one.
type FormMode int

const (
	ModeNew FormMode = iota
	ModeEdit
)

func (m FormMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "new"
}

// Modal is the single active dialog. Only the fields of its Kind are meaningful:
//
//   - ModalForm: Mode
//   - ModalDelete: TargetID
//   - ModalView: Record
type Modal struct {
	Kind     ModalKind
	Mode     FormMode
	TargetID int
	Record   models.Movie
}

// Active reports whether any dialog is open.
func (m Modal) Active() bool { return m.Kind != ModalNone }

func formModal(mode FormMode) Modal   { return Modal{Kind: ModalForm, Mode: mode} }
func deleteModal(id int) Modal        { return Modal{Kind: ModalDelete, TargetID: id} }
func viewModal(rec models.Movie) Modal { return Modal{Kind: ModalView, Record: rec} }

// OpKind names the network work an [Op] performs.
type OpKind int

const (
	OpLoad OpKind = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpLoad:
		return "load"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}
