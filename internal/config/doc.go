// Package config provides ropecore's layered configuration.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Explicit overrides      │  ← Set, command line flags
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← ROPECORE_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ropecore.toml / ropecore.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Settings are read through typed section accessors:
//
//	cfg, err := config.Load(ctx, config.WithFile("ropecore.toml"))
//	if err != nil {
//	    return err
//	}
//	ropeCfg := cfg.Rope()
//	fmt.Println(ropeCfg.ChunkSize, ropeCfg.MaxDepth)
//
// Byte sizes accept human readable units such as "4KiB" or "64MB".
package config
