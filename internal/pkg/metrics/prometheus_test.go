package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_APICalls(t *testing.T) {
	r := NewRecorder()

	r.RecordAPICall("DescribeInstances", nil, 120*time.Millisecond)
	r.RecordAPICall("DescribeInstances", nil, 80*time.Millisecond)
	r.RecordAPICall("DescribeInstances", errors.New("throttled"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.apiCallsTotal.WithLabelValues("DescribeInstances", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.apiCallsTotal.WithLabelValues("DescribeInstances", "error")))
}

func TestRecorder_Inventory(t *testing.T) {
	r := NewRecorder()

	r.SetInventorySize(3, 5)
	r.RecordSkippedInstance("no_private_dns_name")
	r.RecordDefaultedField("ec2_kernel_id")
	r.RecordDefaultedField("ec2_kernel_id")
	r.RecordRun(true, time.Unix(1700000000, 0))

	assert.Equal(t, 3.0, testutil.ToFloat64(r.hostsTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.groupsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skippedTotal.WithLabelValues("no_private_dns_name")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.defaultedFields.WithLabelValues("ec2_kernel_id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunSuccess))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastRunTime))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.SetInventorySize(1, 1)
	r.RecordRun(false, time.Now())

	path := filepath.Join(t.TempDir(), "ec2pull.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ec2pull_inventory_hosts 1")
	assert.Contains(t, string(data), "ec2pull_last_run_success 0")
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.SetInventorySize(10, 0)

	assert.Equal(t, 10.0, testutil.ToFloat64(a.hostsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.hostsTotal))
}

func TestRecorder_Gatherer(t *testing.T) {
	r := NewRecorder()
	r.RecordAPICall("ListRunningInstances", nil, 50*time.Millisecond)
	r.RecordAPICall("ListRunningInstances", errors.New("throttled"), time.Second)

	count, err := testutil.GatherAndCount(r.Gatherer(),
		"ec2pull_ec2_api_calls_total",
		"ec2pull_ec2_api_call_duration_seconds",
		"ec2pull_inventory_skipped_instances_total",
	)
	require.NoError(t, err)
	// two status series plus one histogram; no skips recorded
	assert.Equal(t, 3, count)

	count, err = testutil.GatherAndCount(r.Gatherer(), "ec2pull_inventory_hosts", "ec2pull_last_run_success")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
