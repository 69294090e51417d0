package engine

import (
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

type sampleTrend struct {
	name        string
	category    domain.Category
	angle       float64
	heat        int
	growth      float64
	description string
}

var sampleTrends = []sampleTrend{
	// mainstream
	{"千鸟格", domain.CategoryStyle, 45, 95, 2.3, "经典复古图案，永不过时的优雅选择"},
	{"阔腿裤", domain.CategoryBottoms, 120, 92, 1.8, "舒适显瘦，职场与日常的完美平衡"},
	{"马丁靴", domain.CategoryShoes, 200, 88, 0.5, "街头必备，硬朗风格的代表单品"},
	{"棒球帽", domain.CategoryAccessories, 280, 90, -1.2, "运动休闲风的经典配饰"},
	// trending
	{"Y2K风格", domain.CategoryStyle, 30, 75, 15.2, "千禧年复古风回潮，科技感与怀旧并存"},
	{"工装短裤", domain.CategoryBottoms, 80, 68, 22.1, "实用主义美学，街头风格的新宠"},
	{"芭蕾平底鞋", domain.CategoryShoes, 150, 72, 18.7, "优雅回归，法式浪漫的代表"},
	{"珍珠配饰", domain.CategoryAccessories, 210, 70, 12.4, "轻奢质感，提升整体造型档次"},
	{"薄荷曼波", domain.CategoryStyle, 300, 65, 25.8, "清新甜美风，夏日氛围感拉满"},
	{"丝巾上衣", domain.CategoryTops, 340, 63, 19.3, "法式优雅的现代演绎"},
	// niche
	{"奶奶灰针织", domain.CategoryTops, 60, 42, 45.2, "温柔复古色调，慢生活美学"},
	{"爷爷风背心", domain.CategoryTops, 110, 38, 38.9, "中性风格兴起，打破性别界限"},
	{"帆布鞋改造", domain.CategoryShoes, 170, 35, 52.1, "DIY个性化趋势，独一无二的表达"},
	{"渔夫帽", domain.CategoryAccessories, 240, 40, 41.7, "户外风格兴起，实用与时尚并重"},
	{"学院风马甲", domain.CategoryTops, 290, 44, 36.3, "英伦学院风复兴，知识分子气质"},
	{"渐变染发", domain.CategoryStyle, 330, 47, 28.9, "个性色彩表达，艺术感造型"},
}

// SampleTrends returns the starter catalog.
func SampleTrends(rng domain.Rand) []domain.TrendItem {
	out := make([]domain.TrendItem, 0, len(sampleTrends))
	for _, s := range sampleTrends {
		zone := domain.ZoneOf(s.heat)
		out = append(out, domain.TrendItem{
			Name:        s.name,
			Category:    s.category,
			Zone:        zone,
			Angle:       s.angle,
			Distance:    radarDistance(rng, zone),
			HeatScore:   s.heat,
			GrowthRate:  s.growth,
			Description: s.description,
		})
	}
	return out
}

// SampleSubmissions returns the starter submissions, oldest first.
func SampleSubmissions(now time.Time) []domain.Submission {
	day := 24 * time.Hour
	return []domain.Submission{
		{
			Name:         "宽松工装外套",
			Category:     domain.CategoryTops,
			Description:  "复古工装风格，多口袋设计",
			Inspiration:  "Instagram街拍",
			SubmittedAt:  now.Add(-5 * day),
			Status:       domain.SubmissionTrending,
			SupportCount: 48,
		},
		{
			Name:         "荧光绿运动鞋",
			Category:     domain.CategoryShoes,
			Description:  "超亮荧光绿配色，夜跑神器",
			Inspiration:  "TikTok健身达人",
			SubmittedAt:  now.Add(-2 * day),
			Status:       domain.SubmissionApproved,
			SupportCount: 12,
		},
		{
			Name:         "彩虹毛线帽",
			Category:     domain.CategoryAccessories,
			Description:  "手工编织彩虹条纹，温暖有爱",
			Inspiration:  "小红书手工博主",
			SubmittedAt:  now.Add(-1 * day),
			Status:       domain.SubmissionPending,
			SupportCount: 3,
		},
	}
}

// SamplePredictions returns the starter predictions, oldest first.
func SamplePredictions(now time.Time) []domain.Prediction {
	day := 24 * time.Hour
	settled := now.Add(-2 * day)
	return []domain.Prediction{
		{
			TrendName:   "奶奶灰针织",
			PredictedAt: now.Add(-3 * day),
			CurrentZone: domain.ZoneNiche,
			TargetZone:  domain.ZoneTrending,
			Confidence:  75,
			BetAmount:   10,
			Outcome:     domain.OutcomeCorrect,
			Payout:      30,
			SettledAt:   &settled,
		},
		{
			TrendName:   "渔夫帽",
			PredictedAt: now.Add(-1 * day),
			CurrentZone: domain.ZoneNiche,
			TargetZone:  domain.ZoneTrending,
			Confidence:  60,
			BetAmount:   10,
			Outcome:     domain.OutcomePending,
		},
	}
}
