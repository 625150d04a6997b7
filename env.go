package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "actprint"

// bindEnvironment 把环境变量与配置文件中的值填入未在命令行显式设置的参数。
// 根命令的参数读取 ACTPRINT_<FLAG>，子命令自己的参数读取 ACTPRINT_<COMMAND>_<FLAG>，
// 配置文件中的键与参数名相同。命令行优先于环境变量，环境变量优先于配置文件。
func bindEnvironment(command *cobra.Command, config *string) error {
	global := newEnvViper(envPrefix)
	local := global
	if command.HasParent() {
		local = newEnvViper(envPrefix + "_" + command.Name())
	}

	var errs []string
	apply := func(v *viper.Viper) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			if err := setFlag(f, v.Get(f.Name)); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", f.Name, err))
			}
		}
	}

	command.InheritedFlags().VisitAll(apply(global))
	if *config != "" {
		for _, v := range []*viper.Viper{global, local} {
			v.SetConfigFile(*config)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("读取配置文件 %s 失败: %w", *config, err)
			}
		}
		command.InheritedFlags().VisitAll(apply(global))
	}
	command.LocalFlags().VisitAll(apply(local))

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("映射环境变量到命令参数失败: %s", strings.Join(errs, "; "))
}

func newEnvViper(prefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// setFlag 写入参数值并标记为已设置，切片参数接受配置文件中的列表。
func setFlag(f *pflag.Flag, value any) error {
	if list, ok := value.([]any); ok {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			items := make([]string, len(list))
			for i, item := range list {
				items[i] = fmt.Sprint(item)
			}
			if err := sv.Replace(items); err != nil {
				return err
			}
			f.Changed = true
			return nil
		}
	}
	if err := f.Value.Set(fmt.Sprint(value)); err != nil {
		return err
	}
	f.Changed = true
	return nil
}
