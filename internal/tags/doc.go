// Package tags renders plain text that embeds registered components written
// as {{< name attr="value" >}}body{{< /name >}}. A {{< return >}} tag inside a
// body ends the enclosing component early.
package tags
