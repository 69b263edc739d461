package domain

// Volumes 是单条配方的体积聚合（单位：oz）。
//
// 所有分量只做非负累加；Spirit 目前不参与任何阈值判断，只在 measure 中展示。
type Volumes struct {
	Total  float64 `json:"total" yaml:"total"`
	Acid   float64 `json:"acid" yaml:"acid"`
	Sweet  float64 `json:"sweet" yaml:"sweet"`
	Spirit float64 `json:"spirit" yaml:"spirit"`
}
