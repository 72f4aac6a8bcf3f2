package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/marcusholm/graphbench/internal/config"
	"github.com/marcusholm/graphbench/internal/platform/awscloud"
	"github.com/marcusholm/graphbench/internal/util/retry"
	"github.com/marcusholm/graphbench/internal/util/waiter"
)

// cloudCall runs one control-plane call under the configured backoff.
// Only rate-limiting errors are transient; everything else surfaces on the
// first attempt.
func cloudCall(ctx context.Context, rc config.RetryConfig, fn func() error) error {
	return retry.Do(ctx, fn,
		retry.WithMaxRetries(rc.MaxRetries),
		retry.WithMinDelay(rc.MinDelay),
		retry.WithMaxDelay(rc.MaxDelay),
		retry.WithTransient(awscloud.IsThrottle),
	)
}

// waitDNS blocks until the endpoint hostname resolves. Freshly created
// endpoints exist in the control plane before their DNS records propagate,
// so connecting immediately after create fails spuriously.
func waitDNS(ctx context.Context, r awscloud.Resolver, host string, interval, timeout time.Duration) error {
	if host == "" {
		return fmt.Errorf("endpoint hostname is empty")
	}
	_, err := waiter.Wait(ctx, waiter.Config{
		Resource: "DNS for " + host,
		Interval: interval,
		Timeout:  timeout,
	}, func(ctx context.Context) (string, bool, error) {
		if _, err := r.LookupHost(ctx, host); err != nil {
			return "propagating", false, nil
		}
		return "resolved", true, nil
	})
	return err
}
