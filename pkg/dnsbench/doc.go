/*
Package dnsbench contains the core engine for comparing DNS resolvers across
UDP, TCP, DoT and DoH transports. A Runner orchestrates workload generation
and batched query execution for the cold, warm, burst, nxdomain and
comprehensive test modes and assembles BenchmarkResult values, which are
consumed by the reporter package.
*/
package dnsbench
