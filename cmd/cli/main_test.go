package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run(context.Background(), nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"deposit"}, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"migrate"}, &out), errUsage)
}

func TestPrintDiscrepancies(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	printDiscrepancies(&out, nil)
	assert.Equal(t, "All balances reconcile\n", out.String())

	out.Reset()
	id := uuid.New()
	printDiscrepancies(&out, []ledger.Discrepancy{{AccountID: id, Stored: 500, Expected: 450}})
	assert.Contains(t, out.String(), "1 accounts do not reconcile")
	assert.Contains(t, out.String(), id.String()+" stored=500 expected=450 diff=50")
}
