package pad

import "fmt"

// Transport delivers commands to a synth or DAW
type Transport interface {
	Send(cmd Command) error
	Close() error
}

// TransportError wraps a failed send. The command is lost; nothing retries it.
type TransportError struct {
	Command Command
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send %s: %v", e.Command, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Emitter turns transitions into note commands, one transport write each
type Emitter struct {
	table     NoteTable
	transport Transport
}

// NewEmitter creates an emitter sending through t
func NewEmitter(table NoteTable, t Transport) *Emitter {
	return &Emitter{table: table, transport: t}
}

func (e *Emitter) Table() NoteTable {
	return e.table
}

// Command builds the command for a transition without sending it
func (e *Emitter) Command(tr Transition) (Command, error) {
	note, err := e.table.Note(tr.Slot)
	if err != nil {
		return Command{}, err
	}
	var kind Kind
	switch tr.To {
	case Pressed:
		kind = NoteOn
	case Released:
		kind = NoteOff
	}
	return Command{Kind: kind, Note: note}, nil
}

// Emit sends exactly one command for the transition
func (e *Emitter) Emit(tr Transition) error {
	cmd, err := e.Command(tr)
	if err != nil {
		return err
	}
	if err := e.transport.Send(cmd); err != nil {
		return &TransportError{Command: cmd, Err: err}
	}
	return nil
}
