// Package cleanup は失効レジストリの定期掃除ジョブを提供する。
// トークン自身の有効期限を過ぎたエントリは検証段階で拒否されるため、
// レジストリから削除しても再び受理されることはない。
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval は掃除の既定の実行間隔。
const DefaultInterval = time.Hour

// Sweeper は期限切れの失効エントリを削除できるレジストリ。
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// SweepRecorder は掃除の削除件数を記録する。
type SweepRecorder interface {
	RecordRevocationSweep(removed int)
}

// CleanupJob は失効レジストリから期限切れエントリを削除するジョブ。
type CleanupJob struct {
	registry Sweeper
	recorder SweepRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。recorderはnilでもよい。
func NewCleanupJob(registry Sweeper, recorder SweepRecorder, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		registry: registry,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce は期限切れエントリを1回削除し、削除件数を返す。
// 冪等: 削除対象がない場合は0を返す。
func (j *CleanupJob) RunOnce() int {
	start := time.Now()

	removed := j.registry.Sweep(j.now())
	if j.recorder != nil {
		j.recorder.RecordRevocationSweep(removed)
	}

	j.logger.Info("失効レジストリの掃除が完了しました",
		slog.Int("removed_count", removed),
		slog.Int("remaining_count", j.registry.Len()),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return removed
}

// Start はinterval間隔で掃除を実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("失効レジストリの掃除ジョブを開始しました",
		slog.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("失効レジストリの掃除ジョブを停止しました")
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}
