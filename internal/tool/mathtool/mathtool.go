// Package mathtool exposes integer arithmetic to the model.
package mathtool

import (
	"context"
	"strconv"

	"github.com/Cyclone1070/turnkit/internal/tool"
)

// Operands are the arguments of every arithmetic tool.
type Operands struct {
	A int `json:"a" description:"first operand"`
	B int `json:"b" description:"second operand"`
}

func (o Operands) String() string {
	return strconv.Itoa(o.A) + ", " + strconv.Itoa(o.B)
}

func binary(name, description string, op func(a, b int) int) tool.Tool {
	return tool.NewFunction(name, description, func(_ context.Context, req Operands) (string, error) {
		return strconv.Itoa(op(req.A, req.B)), nil
	})
}

// Add returns the add tool.
func Add() tool.Tool {
	return binary("add", "Add two integers and return the sum.", func(a, b int) int { return a + b })
}

// Subtract returns the subtract tool.
func Subtract() tool.Tool {
	return binary("subtract", "Subtract b from a and return the difference.", func(a, b int) int { return a - b })
}

// Multiply returns the multiply tool.
func Multiply() tool.Tool {
	return binary("multiply", "Multiply two integers and return the product.", func(a, b int) int { return a * b })
}

// All returns every arithmetic tool.
func All() []tool.Tool {
	return []tool.Tool{Add(), Subtract(), Multiply()}
}
