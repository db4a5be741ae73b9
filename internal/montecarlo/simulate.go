package montecarlo

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimulatePaths 用几何布朗运动模拟NumPaths条独立路径，
// 返回每条路径的期末净值倍数。路径之间无共享状态，
// 按区间静态分配给worker，每个worker持有自己的随机流
func (s *Simulator) SimulatePaths(ctx context.Context, drift, stddev float64) ([]float64, error) {
	cfg := s.cfg
	outcomes := make([]float64, cfg.NumPaths)

	// 零波动退化情形：每条路径都等于exp(drift*天数)
	if stddev == 0 {
		terminal := math.Exp(drift * float64(cfg.TradingDays))
		for i := range outcomes {
			outcomes[i] = terminal
		}
		return outcomes, nil
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := cfg.Workers
	if workers > cfg.NumPaths {
		workers = cfg.NumPaths
	}
	chunk := (cfg.NumPaths + workers - 1) / workers

	var wg sync.WaitGroup
	errChan := make(chan error, workers)

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > cfg.NumPaths {
			end = cfg.NumPaths
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(worker)))
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					errChan <- err
					return
				}
				value := 1.0
				for d := 0; d < cfg.TradingDays; d++ {
					value *= math.Exp(drift + stddev*rng.NormFloat64())
				}
				outcomes[i] = value
			}
		}(w, start, end)
	}

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}
	return outcomes, nil
}
