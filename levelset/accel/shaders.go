package accel

// narrowBandSource is the GLSL compute shader for the accelerator's
// narrow-band pass: one invocation per triangle, each scattering its exact
// distance into every grid cell within its (padded) bounding box, and its
// crossing count into the (j,k) column its projection covers. Writers race
// across triangles, so phi is stored as the uint bit pattern of its
// float32 value and updated with imageAtomicMin. IEEE-754 float32 bit
// patterns are monotonically ordered for non-negative values, so an
// integer atomic min on the bit pattern is exactly a float atomic min,
// with no 64-bit CAS loop needed. xc is a plain signed int image updated
// with imageAtomicAdd. ClosestTri is not computed on this path; it is
// CPU-only.
const narrowBandSource = `

#version 460
layout(local_size_x = 64) in;

layout(binding = 0, rgba32f) uniform readonly image2D triangles; // 3 consecutive texels per triangle, xyz used
layout(binding = 1, r32ui) uniform uimage2D phiBits;             // flattened (nx*ny, nz)
layout(binding = 2, rgba32f) uniform readonly image2D params;    // packed GridParams, see accel.go
layout(binding = 3, r32i) uniform iimage2D xcBits;               // flattened (nx*ny, nz), crossing counts

float pointSegmentDistance(vec3 p, vec3 a, vec3 b) {
    vec3 d = b - a;
    float d2 = dot(d, d);
    if (d2 < 1e-30) return length(p - a);
    float t = clamp(dot(p - a, d) / d2, 0.0, 1.0);
    return length(p - (a + t * d));
}

// pointTriangleDistance mirrors levelset.PointTriangleDistance (Go):
// barycentric projection onto the triangle plane, falling back to the
// two edges adjacent to the vertex with the largest weight when the
// projection falls outside the triangle.
float pointTriangleDistance(vec3 p, vec3 a, vec3 b, vec3 c) {
    vec3 ab = a - c;
    vec3 cb = b - c;
    vec3 pc = p - c;
    float abab = dot(ab, ab);
    float cbcb = dot(cb, cb);
    float abcb = dot(ab, cb);
    float det = abab * cbcb - abcb * abcb;
    if (det < 1e-30) det = 1e-30;
    float abpc = dot(ab, pc);
    float cbpc = dot(cb, pc);
    float s = (cbcb * abpc - abcb * cbpc) / det;
    float t = (abab * cbpc - abcb * abpc) / det;
    float w = 1.0 - s - t;
    if (s >= 0.0 && t >= 0.0 && w >= 0.0) {
        vec3 proj = c + s * ab + t * cb;
        return length(p - proj);
    }
    float d1, d2_;
    if (w >= s && w >= t) {
        d1 = pointSegmentDistance(p, c, a);
        d2_ = pointSegmentDistance(p, c, b);
    } else if (s >= t) {
        d1 = pointSegmentDistance(p, a, b);
        d2_ = pointSegmentDistance(p, a, c);
    } else {
        d1 = pointSegmentDistance(p, a, b);
        d2_ = pointSegmentDistance(p, b, c);
    }
    return min(d1, d2_);
}

// orient2D mirrors levelset.Orient2D (Go): the sign of the 2D cross
// product x1*y2 - x2*y1, falling back to a y-then-x tie-break when the
// area is exactly zero so a shared edge is oriented consistently by every
// triangle that touches it.
vec2 orient2D(float x1, float y1, float x2, float y2) {
    float area2 = x1 * y2 - x2 * y1;
    if (area2 > 0.0) return vec2(1.0, area2);
    if (area2 < 0.0) return vec2(-1.0, area2);
    if (y1 != y2) return vec2(y1 < y2 ? 1.0 : -1.0, 0.0);
    if (x1 != x2) return vec2(x1 < x2 ? 1.0 : -1.0, 0.0);
    return vec2(0.0, 0.0);
}

// pointInTriangle2D mirrors levelset.PointInTriangle2D (Go): barycentric
// coordinates of p in the 2D triangle (a,b,c) via three orient2D calls on
// edges translated so p is the origin. Returns (alpha, beta, gamma, hit).
vec4 pointInTriangle2D(float px, float py, float ax, float ay, float bx, float by, float cx, float cy) {
    float pax = ax - px, pay = ay - py;
    float pbx = bx - px, pby = by - py;
    float pcx = cx - px, pcy = cy - py;

    vec2 o1 = orient2D(pax, pay, pbx, pby); // opposite c
    vec2 o2 = orient2D(pbx, pby, pcx, pcy); // opposite a
    vec2 o3 = orient2D(pcx, pcy, pax, pay); // opposite b

    int nonZero = 0;
    float sign = 0.0;
    float signs[3] = float[3](o1.x, o2.x, o3.x);
    for (int i = 0; i < 3; i++) {
        if (signs[i] == 0.0) continue;
        nonZero++;
        if (sign == 0.0) {
            sign = signs[i];
        } else if (sign != signs[i]) {
            return vec4(0.0, 0.0, 0.0, 0.0);
        }
    }
    if (nonZero == 0) {
        return vec4(0.0, 0.0, 0.0, 0.0);
    }

    float total = o1.y + o2.y + o3.y;
    if (abs(total) < 1e-30) {
        return vec4(0.0, 0.0, 0.0, 0.0);
    }
    float alpha = o2.y / total;
    float beta = o3.y / total;
    float gamma = o1.y / total;
    return vec4(alpha, beta, gamma, 1.0);
}

void main() {
    uint triIdx = gl_GlobalInvocationID.x;
    vec4 p0 = imageLoad(params, ivec2(0, 0));
    vec4 p1 = imageLoad(params, ivec2(1, 0));
    ivec3 n = ivec3(p0.xyz);
    float dx = p0.w;
    vec3 origin = p1.xyz;
    int exactBand = int(p1.w);

    if (int(triIdx) * 3 >= int(imageSize(triangles).x)) {
        return;
    }
    vec3 a = imageLoad(triangles, ivec2(int(triIdx) * 3 + 0, 0)).xyz;
    vec3 b = imageLoad(triangles, ivec2(int(triIdx) * 3 + 1, 0)).xyz;
    vec3 c = imageLoad(triangles, ivec2(int(triIdx) * 3 + 2, 0)).xyz;

    vec3 lo = min(a, min(b, c));
    vec3 hi = max(a, max(b, c));
    ivec3 i0 = max(ivec3(floor((lo - origin) / dx)) - exactBand, ivec3(0));
    ivec3 i1 = min(ivec3(ceil((hi - origin) / dx)) + exactBand, n - ivec3(1));

    for (int k = i0.z; k <= i1.z; k++) {
        for (int j = i0.y; j <= i1.y; j++) {
            for (int i = i0.x; i <= i1.x; i++) {
                vec3 p = origin + dx * vec3(i, j, k);
                float d = pointTriangleDistance(p, a, b, c);
                ivec2 coord = ivec2(i + n.x * j, k);
                imageAtomicMin(phiBits, coord, floatBitsToUint(d));
            }
        }
    }

    // Crossing-count scatter: project the triangle onto the (j,k) plane
    // in grid coordinates and, for every column the projection covers,
    // increment xc at the column's x-crossing cell. Mirrors
    // updateCrossingAABB exactly, including folding istar<0 onto i=0 and
    // dropping istar>=nx.
    vec3 fa = (a - origin) / dx;
    vec3 fb = (b - origin) / dx;
    vec3 fc = (c - origin) / dx;

    int j0 = clamp(int(ceil(min(fa.y, min(fb.y, fc.y)))), 0, n.y - 1);
    int j1 = clamp(int(floor(max(fa.y, max(fb.y, fc.y)))), 0, n.y - 1);
    int k0 = clamp(int(ceil(min(fa.z, min(fb.z, fc.z)))), 0, n.z - 1);
    int k1 = clamp(int(floor(max(fa.z, max(fb.z, fc.z)))), 0, n.z - 1);

    for (int k = k0; k <= k1; k++) {
        for (int j = j0; j <= j1; j++) {
            vec4 bary = pointInTriangle2D(float(j), float(k), fa.y, fa.z, fb.y, fb.z, fc.y, fc.z);
            if (bary.w == 0.0) continue;
            float fi = bary.x * fa.x + bary.y * fb.x + bary.z * fc.x;
            int istar = int(ceil(fi));
            if (istar < 0) {
                imageAtomicAdd(xcBits, ivec2(0 + n.x * j, k), 1);
            } else if (istar < n.x) {
                imageAtomicAdd(xcBits, ivec2(istar + n.x * j, k), 1);
            }
        }
    }
}
`

// eikonalSource is the GLSL compute shader for the accelerator's Jacobi
// Eikonal sweep: double-buffered, one invocation per cell per iteration,
// run for 2*max(nx,ny,nz) iterations. That bound is the standard
// Jacobi-sweep propagation-distance guarantee: a wavefront starting from
// any corner of the grid reaches every cell within max(nx,ny,nz) sweeps
// per direction, doubled because Jacobi, unlike Gauss-Seidel, only
// propagates one cell of information per iteration along the slowest axis.
const eikonalSource = `

#version 460
layout(local_size_x = 64) in;

layout(binding = 0, r32f) uniform readonly image3D phiIn;
layout(binding = 1, r32f) uniform writeonly image3D phiOut;
layout(binding = 2, rgba32f) uniform readonly image2D params;

float upwind(ivec3 n, float dx, float a, bool aok, float b, bool bok, float c, bool cok) {
    float vals[3];
    int cnt = 0;
    if (aok) vals[cnt++] = a;
    if (bok) vals[cnt++] = b;
    if (cok) vals[cnt++] = c;
    if (cnt == 0) return 1e30;
    // insertion sort, cnt <= 3
    for (int i = 1; i < cnt; i++) {
        float v = vals[i];
        int j = i - 1;
        while (j >= 0 && vals[j] > v) { vals[j+1] = vals[j]; j--; }
        vals[j+1] = v;
    }
    float t = vals[0] + dx;
    if (cnt >= 2) {
        float disc = 2.0*dx*dx - (vals[0]-vals[1])*(vals[0]-vals[1]);
        if (disc >= 0.0) {
            float t2 = (vals[0] + vals[1] + sqrt(disc)) * 0.5;
            if (cnt == 2 || t2 <= vals[1] + 1e-4) t = min(t, t2);
        }
    }
    if (cnt == 3) {
        float s = vals[0]+vals[1]+vals[2];
        float ss = vals[0]*vals[0]+vals[1]*vals[1]+vals[2]*vals[2];
        float disc = s*s - 3.0*(ss - dx*dx);
        if (disc >= 0.0) {
            float t3 = (s + sqrt(disc)) / 3.0;
            if (t3 >= vals[2]) t = min(t, t3);
        }
    }
    return t;
}

void main() {
    vec4 p0 = imageLoad(params, ivec2(0, 0));
    ivec3 n = ivec3(p0.xyz);
    float dx = p0.w;
    ivec3 c = ivec3(gl_GlobalInvocationID);
    if (any(greaterThanEqual(c, n))) return;

    float cur = imageLoad(phiIn, c).r;
    float sign = cur < 0.0 ? -1.0 : 1.0;
    float curAbs = abs(cur);

    bool okx0 = c.x > 0;
    bool okx1 = c.x < n.x-1;
    bool oky0 = c.y > 0;
    bool oky1 = c.y < n.y-1;
    bool okz0 = c.z > 0;
    bool okz1 = c.z < n.z-1;

    float vx = 1e30; bool vxok = okx0 || okx1;
    if (okx0) vx = abs(imageLoad(phiIn, c - ivec3(1,0,0)).r);
    if (okx1) vx = min(vx, abs(imageLoad(phiIn, c + ivec3(1,0,0)).r));

    float vy = 1e30; bool vyok = oky0 || oky1;
    if (oky0) vy = abs(imageLoad(phiIn, c - ivec3(0,1,0)).r);
    if (oky1) vy = min(vy, abs(imageLoad(phiIn, c + ivec3(0,1,0)).r));

    float vz = 1e30; bool vzok = okz0 || okz1;
    if (okz0) vz = abs(imageLoad(phiIn, c - ivec3(0,0,1)).r);
    if (okz1) vz = min(vz, abs(imageLoad(phiIn, c + ivec3(0,0,1)).r));

    float t = upwind(n, dx, vx, vxok, vy, vyok, vz, vzok);
    float out_ = t < curAbs ? t : curAbs;
    imageStore(phiOut, c, vec4(sign * out_, 0, 0, 0));
}
`
