// Package editor 提供终端中的 JavaScript 编辑组件：行缓冲、光标与滚动、
// 行号栏、Chroma 语法高亮、两套主题、整行装饰以及可注册的快捷命令。
//
// 组件以指针方式嵌入上层 Bubble Tea 模型，只在 UI 线程上使用。
package editor
