package interp

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"coolc/semant"
)

type builtinMethod func(i *Interp, receiver Value, args []Value) (Value, error)

// builtins holds the method bodies of the basic classes, keyed by the
// class that declares them so the dispatch walk finds them at the right
// level of the chain.
var builtins = map[string]map[string]builtinMethod{
	semant.ObjectClass: {
		"abort": func(_ *Interp, receiver Value, _ []Value) (Value, error) {
			return nil, errors.Errorf("abort called on %s", receiver.Type())
		},
		"type_name": func(_ *Interp, receiver Value, _ []Value) (Value, error) {
			return &String{Value: receiver.Type()}, nil
		},
		"copy": func(_ *Interp, receiver Value, _ []Value) (Value, error) {
			inst, ok := receiver.(*Instance)
			if !ok {
				return receiver, nil
			}
			clone := &Instance{Class: inst.Class, Fields: NewScope(nil)}
			clone.Fields.SetSelf(clone)
			for name, v := range inst.Fields.vars {
				clone.Fields.Define(name, v)
			}
			return clone, nil
		},
	},
	semant.IOClass: {
		"out_string": func(i *Interp, receiver Value, args []Value) (Value, error) {
			str, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			fmt.Fprint(i.Out, str)
			return receiver, nil
		},
		"out_int": func(i *Interp, receiver Value, args []Value) (Value, error) {
			n, err := intArg(args, 0)
			if err != nil {
				return nil, err
			}
			fmt.Fprint(i.Out, n)
			return receiver, nil
		},
		"in_string": func(i *Interp, _ Value, _ []Value) (Value, error) {
			line, err := i.readLine()
			if err != nil {
				return nil, err
			}
			return &String{Value: line}, nil
		},
		"in_int": func(i *Interp, _ Value, _ []Value) (Value, error) {
			line, err := i.readLine()
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "in_int")
			}
			return &Integer{Value: n}, nil
		},
	},
	semant.StringClass: {
		"length": func(_ *Interp, receiver Value, _ []Value) (Value, error) {
			str, err := stringReceiver(receiver)
			if err != nil {
				return nil, err
			}
			return &Integer{Value: int64(len(str))}, nil
		},
		"concat": func(_ *Interp, receiver Value, args []Value) (Value, error) {
			str, err := stringReceiver(receiver)
			if err != nil {
				return nil, err
			}
			other, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			return &String{Value: str + other}, nil
		},
		"substr": func(_ *Interp, receiver Value, args []Value) (Value, error) {
			str, err := stringReceiver(receiver)
			if err != nil {
				return nil, err
			}
			start, err := intArg(args, 0)
			if err != nil {
				return nil, err
			}
			length, err := intArg(args, 1)
			if err != nil {
				return nil, err
			}
			if start < 0 || length < 0 || start+length > int64(len(str)) {
				return nil, errors.Errorf("substr(%d, %d) out of range on string of length %d", start, length, len(str))
			}
			return &String{Value: str[start : start+length]}, nil
		},
	},
}

func (i *Interp) readLine() (string, error) {
	if i.reader == nil {
		i.reader = bufio.NewReader(i.In)
	}
	line, err := i.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimRight(line, "\n"), nil
}

func stringReceiver(receiver Value) (string, error) {
	s, ok := receiver.(*String)
	if !ok {
		return "", errors.Errorf("string method on %s value", receiver.Type())
	}
	return s.Value, nil
}

func stringArg(args []Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", errors.Errorf("missing argument %d", idx)
	}
	s, ok := args[idx].(*String)
	if !ok {
		return "", errors.Errorf("expected String argument, got %s", args[idx].Type())
	}
	return s.Value, nil
}

func intArg(args []Value, idx int) (int64, error) {
	if idx >= len(args) {
		return 0, errors.Errorf("missing argument %d", idx)
	}
	n, ok := args[idx].(*Integer)
	if !ok {
		return 0, errors.Errorf("expected Int argument, got %s", args[idx].Type())
	}
	return n.Value, nil
}
