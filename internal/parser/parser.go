package parser

import (
	"context"
	"fmt"

	"EquiSync/internal/config"
	"EquiSync/internal/model"
	"EquiSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Parser 来源解析策略。纯提取：不筛日期、不判比赛、不规范化
// 场地与项目、不碰数据库、不调分类器——全部事件照原样吐出，
// 由扫描编排器统一处理。
type Parser interface {
	FetchAndParse(ctx context.Context, sourceURL string) ([]model.ExtractedEvent, error)
}

// Deps 解析器运行依赖（共享限速HTTP客户端等）
type Deps struct {
	Client    *httpclient.Client
	Extractor config.ExtractorConfig
	Logger    *logrus.Logger
}

// Factory 解析器工厂函数签名
type Factory func(deps Deps) Parser

// ========== 全局工厂函数注册表 ==========
var factoryRegistry = make(map[string]Factory)

// Register 供各解析器init函数调用，按稳定key注册工厂函数
func Register(key string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("解析器%s的工厂函数不能为nil", key))
	}
	if _, exists := factoryRegistry[key]; exists {
		logrus.Warnf("解析器%s已注册，将覆盖原有实现", key)
	}
	factoryRegistry[key] = factory
}

// Get 取指定key的解析器实例；key未注册或为空时回落到通用LLM提取器
func Get(key string, deps Deps) Parser {
	if factory, ok := factoryRegistry[key]; ok {
		return factory(deps)
	}
	return NewGenericParser(deps)
}

// Has key是否有专用解析器
func Has(key string) bool {
	_, ok := factoryRegistry[key]
	return ok
}

// Keys 全部已注册的解析器key
func Keys() []string {
	keys := make([]string, 0, len(factoryRegistry))
	for k := range factoryRegistry {
		keys = append(keys, k)
	}
	return keys
}
