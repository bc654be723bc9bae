package commands

import (
	"errors"
	"io"
)

// Command is the root of the commands.
type Command interface {
	Run()
}

type CommandWithHelp interface {
	Command
	Help() string
}

type CommandWithDescription interface {
	Command
	Description() string
}

type ConcreteCommand struct{}

func NewConcreteCommand() *ConcreteCommand {
	return &ConcreteCommand{}
}

func (c *ConcreteCommand) Run() {}

type ConcreteCommandWithTwoInterfaces struct{}

func NewConcreteCommandWithTwoInterfaces() *ConcreteCommandWithTwoInterfaces {
	return &ConcreteCommandWithTwoInterfaces{}
}

func (c *ConcreteCommandWithTwoInterfaces) Run() {}

func (c *ConcreteCommandWithTwoInterfaces) Help() string { return "help" }

func (c *ConcreteCommandWithTwoInterfaces) Description() string { return "description" }

// DecoratorCommand prints a line before running the command.
//
// @forward subject="ConcreteCommandWithTwoInterfaces" argument="command"
// @forward subject="github.com/example/commands.ClosingCommand" argument="command"
type DecoratorCommand struct {
	command Command
}

func NewDecoratorCommand(command Command) *DecoratorCommand {
	return &DecoratorCommand{command: command}
}

func (d *DecoratorCommand) Run() {
	println("running")
	d.command.Run()
}

// FallibleDecorator refuses to decorate nothing.
//
// @forward subject="ConcreteCommand" argument="command" unknown="x"
// @forward subject="ConcreteCommand"
type FallibleDecorator struct {
	*DecoratorCommand
}

func NewFallibleDecorator(command *Command, times int) (FallibleDecorator, error) {
	if command == nil {
		return FallibleDecorator{}, errors.New("no command")
	}
	return FallibleDecorator{DecoratorCommand: NewDecoratorCommand(*command)}, nil
}

// LoggingCommand logs the commands it runs.
type LoggingCommand struct {
	inner *ConcreteCommandWithTwoInterfaces
}

func NewLoggingCommand(inner *ConcreteCommandWithTwoInterfaces) *LoggingCommand {
	return &LoggingCommand{inner: inner}
}

func (l *LoggingCommand) Run() {
	println("logging")
	l.inner.Run()
}

// ClosingCommand releases its resources when closed.
type ClosingCommand struct{}

func (c *ClosingCommand) Run() {}

func (c *ClosingCommand) Close() error { return nil }

// FinalCommand can not be decorated.
//
// @final
type FinalCommand struct{}

func (f *FinalCommand) Run() {}

type Anonymous = struct{ Name string }

type Alias = ConcreteCommand

// Foo has signatures covering every marker.
type Foo interface {
	Foo(items ...string) (*int, error)
	Bar(target *string, _ int, value any) map[string][]byte
	Baz(callback func(int, ...string) error, events <-chan Event)
}

type Event struct{}

var _ io.Closer = (*ClosingCommand)(nil)
