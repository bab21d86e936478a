package tastefeed

import "context"

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthReport {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthReport{
		Status: string(report.Status),
		Checks: checks,
	}
}
