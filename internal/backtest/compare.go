package backtest

import "sort"

// Ranked 为带策略注册名的排名条目。
type Ranked struct {
	ID     string
	Result Result
}

// Rank 按总收益降序排列回测结果，收益相同时按注册名
// 升序保证输出稳定。
func Rank(results map[string]Result) []Ranked {
	ranked := make([]Ranked, 0, len(results))
	for id, result := range results {
		ranked = append(ranked, Ranked{ID: id, Result: result})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Result.TotalReturn != ranked[j].Result.TotalReturn {
			return ranked[i].Result.TotalReturn > ranked[j].Result.TotalReturn
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked
}
