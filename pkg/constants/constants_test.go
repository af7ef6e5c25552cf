package constants

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to in progress", DeploymentStatusPending, DeploymentStatusInProgress, true},
		{"pending to failed", DeploymentStatusPending, DeploymentStatusFailed, true},
		{"pending to completed", DeploymentStatusPending, DeploymentStatusCompleted, false},
		{"in progress to completed", DeploymentStatusInProgress, DeploymentStatusCompleted, true},
		{"in progress to failed", DeploymentStatusInProgress, DeploymentStatusFailed, true},
		{"in progress to pending", DeploymentStatusInProgress, DeploymentStatusPending, false},
		{"completed is terminal", DeploymentStatusCompleted, DeploymentStatusInProgress, false},
		{"completed to failed", DeploymentStatusCompleted, DeploymentStatusFailed, false},
		{"failed is terminal", DeploymentStatusFailed, DeploymentStatusPending, false},
		{"failed to completed", DeploymentStatusFailed, DeploymentStatusCompleted, false},
		{"unknown status", "Unknown", DeploymentStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
