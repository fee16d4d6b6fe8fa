package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCommandsValidateArgs(t *testing.T) {
	for _, cmd := range []struct {
		name string
		args []string
	}{
		{"resend", nil},
		{"receipt", nil},
		{"status", []string{"a", "b"}},
		{"sweep", []string{"extra"}},
	} {
		c := map[string]func() *cobra.Command{
			"resend":  resendCmd,
			"receipt": receiptCmd,
			"status":  statusCmd,
			"sweep":   sweepCmd,
		}[cmd.name]()
		c.SetArgs(cmd.args)
		c.SetOut(&bytes.Buffer{})
		c.SetErr(&bytes.Buffer{})
		assert.Error(t, c.Execute(), cmd.name)
	}
}

func TestReceiptOutputFlag(t *testing.T) {
	c := receiptCmd()
	flag := c.Flags().Lookup("output")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "o", flag.Shorthand)
	}
}

func TestValueOrDash(t *testing.T) {
	assert.Equal(t, "-", valueOrDash(""))
	assert.Equal(t, "pay_1", valueOrDash("pay_1"))
}
